package app

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/womat/debug"

	"rcswitch/pkg/app/config"
	"rcswitch/pkg/rcswitch"
)

func TestMain(m *testing.M) {
	debug.SetDebug(os.Stderr, debug.Standard)
	os.Exit(m.Run())
}

func newTestApp(t *testing.T) *App {
	t.Helper()

	cfg := config.NewConfig()
	cfg.Driver = "emulator"
	cfg.Webserver.URL = "http://127.0.0.1:0"
	if err := cfg.LoadConfig(); err != nil {
		t.Fatal(err)
	}
	cfg.Emulator.Interval = 10 * time.Millisecond

	a, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Run(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func get(t *testing.T, a *App, path string) []byte {
	t.Helper()

	resp, err := a.web.Test(httptest.NewRequest("GET", path, nil), -1)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != 200 {
		t.Fatalf("GET %s: status %d", path, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestApp(t *testing.T) {
	a := newTestApp(t)

	deadline := time.Now().Add(5 * time.Second)
	for len(a.history.last()) < 2 {
		if time.Now().After(deadline) {
			t.Fatal("no code words received from the emulator")
		}
		time.Sleep(10 * time.Millisecond)
	}

	var data struct {
		Session   string         `json:"session"`
		Stats     rcswitch.Stats `json:"stats"`
		CodeWords []CodeWord     `json:"codeWords"`
	}
	if err := json.Unmarshal(get(t, a, "/data"), &data); err != nil {
		t.Fatal(err)
	}
	if data.Session != a.session.ID.String() {
		t.Errorf("session = %q, want %q", data.Session, a.session.ID)
	}
	if len(data.CodeWords) < 2 || data.Stats.Words < 2 {
		t.Fatalf("data = %+v", data)
	}
	for _, cw := range data.CodeWords {
		if cw.Code != a.config.Emulator.Code {
			t.Errorf("code = %q, want %q", cw.Code, a.config.Emulator.Code)
		}
		if !strings.HasPrefix(cw.Timing, "0:1.400 ms, 1:1.400 ms, S:") {
			t.Errorf("timing = %q", cw.Timing)
		}
	}

	if b := get(t, a, "/version"); !strings.Contains(string(b), VERSION) {
		t.Errorf("version = %s", b)
	}
	if b := get(t, a, "/health"); !strings.Contains(string(b), a.session.ID.String()) {
		t.Errorf("health = %s", b)
	}

	metrics := string(get(t, a, "/metrics"))
	for _, m := range []string{"rcswitch_code_words_total", "rcswitch_edges_total", `rcswitch_annotations_total{category="data"}`} {
		if !strings.Contains(metrics, m) {
			t.Errorf("metrics don't contain %s", m)
		}
	}
}

func TestHistory(t *testing.T) {
	h := newHistory(3)
	if _, ok := h.newest(); ok {
		t.Error("empty history has a newest entry")
	}

	for _, c := range []string{"0", "1", "F", "X"} {
		h.add(CodeWord{Code: c})
	}

	l := h.last()
	if len(l) != 3 || l[0].Code != "X" || l[1].Code != "F" || l[2].Code != "1" {
		t.Errorf("last() = %+v, want X F 1", l)
	}
	if w, ok := h.newest(); !ok || w.Code != "X" {
		t.Errorf("newest() = %+v, %v", w, ok)
	}
}

func TestInvalidSamplerate(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Driver = "emulator"
	cfg.Samplerate = 0
	if err := cfg.LoadConfig(); err != nil {
		t.Fatal(err)
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = a.Close() }()

	if err := a.Run(); !errors.Is(err, rcswitch.ErrSamplerate) {
		t.Errorf("Run() error = %v, want ErrSamplerate", err)
	}
}
