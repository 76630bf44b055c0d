package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"rcswitch/pkg/rcswitch"
)

const namespace = "rcswitch"

// metrics holds the prometheus collectors of the application.
type metrics struct {
	annotations *prometheus.CounterVec
	published   prometheus.Counter
}

// newMetrics registers the decoder counters of session and the process metrics.
func newMetrics(reg *prometheus.Registry, s *rcswitch.Session) *metrics {
	factory := promauto.With(reg)

	counter := func(name, help string, value func(rcswitch.Stats) uint64) {
		factory.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(value(s.Stats())) })
	}

	counter("edges_total", "Number of received line edges", func(st rcswitch.Stats) uint64 { return st.Edges })
	counter("bits_total", "Number of decoded bits", func(st rcswitch.Stats) uint64 { return st.Bits })
	counter("discarded_total", "Number of bit-pairs shorter than the minimum pulse length", func(st rcswitch.Stats) uint64 { return st.Discarded })
	counter("syncs_total", "Number of decoded syncs", func(st rcswitch.Stats) uint64 { return st.Syncs })
	counter("code_words_total", "Number of decoded code words", func(st rcswitch.Stats) uint64 { return st.Words })
	counter("malformed_words_total", "Number of words with an odd count of bits", func(st rcswitch.Stats) uint64 { return st.Malformed })

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &metrics{
		annotations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "annotations_total",
			Help:      "Number of decoder annotations by category",
		}, []string{"category"}),
		published: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "published_total",
			Help:      "Number of code words sent to the mqtt broker",
		}),
	}
}
