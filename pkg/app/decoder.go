package app

import (
	"context"
	"sync"
	"time"

	"github.com/womat/debug"

	"rcswitch/pkg/mqtt"
	"rcswitch/pkg/rcswitch"
)

// historySize is the number of code words kept for the data web service.
const historySize = 32

// CodeWord is a received code word as published to mqtt and the data web service.
type CodeWord struct {
	Session   string          `json:"session"`
	TimeStamp time.Time       `json:"time"`
	Code      string          `json:"code"`
	Start     int64           `json:"start"`
	End       int64           `json:"end"`
	Timing    string          `json:"timing"`
	Durations rcswitch.Timing `json:"durations"`
}

// history is a ring buffer of the last received code words.
type history struct {
	sync.RWMutex
	words []CodeWord
	next  int
	full  bool
}

func newHistory(size int) *history {
	return &history{words: make([]CodeWord, size)}
}

func (h *history) add(w CodeWord) {
	h.Lock()
	defer h.Unlock()

	h.words[h.next] = w
	h.next = (h.next + 1) % len(h.words)
	if h.next == 0 {
		h.full = true
	}
}

// last returns the code words, the newest first.
func (h *history) last() []CodeWord {
	h.RLock()
	defer h.RUnlock()

	n := h.next
	if h.full {
		n = len(h.words)
	}

	l := make([]CodeWord, 0, n)
	for i := 1; i <= n; i++ {
		l = append(l, h.words[(h.next-i+len(h.words))%len(h.words)])
	}
	return l
}

// newest returns the last received code word.
func (h *history) newest() (CodeWord, bool) {
	h.RLock()
	defer h.RUnlock()

	if h.next == 0 && !h.full {
		return CodeWord{}, false
	}
	return h.words[(h.next-1+len(h.words))%len(h.words)], true
}

// decode runs the decoder session until the line is closed or ctx is canceled.
func (app *App) decode(ctx context.Context) {
	defer close(app.shutdown)

	debug.InfoLog.Printf("start decoding session %v (gpio %v, %v Hz, %v)",
		app.session.ID, app.config.Gpio, app.session.Samplerate(), app.session.Options().Polarity)

	if err := app.session.Decode(ctx, app.line, app); err != nil && ctx.Err() == nil {
		debug.ErrorLog.Printf("decoding session %v: %v", app.session.ID, err)
		return
	}

	debug.InfoLog.Printf("decoding session %v stopped", app.session.ID)
}

// Annotate implements rcswitch.Sink.
func (app *App) Annotate(a rcswitch.Annotation) {
	app.metrics.annotations.WithLabelValues(string(a.Category)).Inc()
	debug.TraceLog.Printf("%-6s [%d, %d) %s", a.Category, a.Start, a.End, a.Text())
}

// Word implements rcswitch.Sink. It saves valid code words and sends them to the mqtt broker.
func (app *App) Word(w rcswitch.Word) {
	if !w.Valid {
		debug.DebugLog.Printf("malformed word with %d bits (%v)", len(w.Bits)-1, w.Timing)
		return
	}

	cw := CodeWord{
		Session:   app.session.ID.String(),
		TimeStamp: time.Now(),
		Code:      w.Code,
		Start:     w.Start,
		End:       w.End,
		Timing:    w.Timing.String(),
		Durations: w.Timing,
	}

	prev, seen := app.history.newest()
	app.history.add(cw)
	debug.InfoLog.Printf("code word %s (%s)", cw.Code, cw.Timing)

	// remotes repeat a transmission several times, send it only once
	if seen && prev.Code == cw.Code && cw.TimeStamp.Sub(prev.TimeStamp) < app.config.MQTT.Holdoff {
		return
	}

	app.sendMQTT(app.config.MQTT.Topic, cw)
}

// sendMQTT send message struct to the mqtt broker.
func (app *App) sendMQTT(topic string, message interface{}) {
	debug.TraceLog.Printf("prepare mqtt message %v %v", topic, message)

	msg, err := mqtt.NewMessage(topic, message, app.config.MQTT.Retained)
	if err != nil {
		debug.ErrorLog.Printf("sendMQTT marshal: %v", err)
		return
	}

	select {
	case app.mqtt.C <- msg:
		app.metrics.published.Inc()
	default:
		debug.ErrorLog.Printf("mqtt queue is full, drop message to topic %v", topic)
	}
}
