package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ResultOK       = "ok"
	ResultInvalid  = "invalid"
	ResultUpstream = "upstream_error"
	ResultInternal = "internal_error"
	ResultCut      = "interrupted"
)

var (
	once sync.Once

	// AsksTotal counts gateway requests by outcome.
	AsksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "soup",
		Subsystem: "gateway",
		Name:      "asks_total",
		Help:      "Total number of ask requests handled by the gateway, labeled by result.",
	}, []string{"result"})

	// StreamsInFlight is the number of responses currently being relayed.
	StreamsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "soup",
		Subsystem: "gateway",
		Name:      "streams_in_flight",
		Help:      "Current number of provider streams being relayed to clients.",
	})

	ChunksRelayedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "soup",
		Subsystem: "gateway",
		Name:      "chunks_relayed_total",
		Help:      "Total number of provider chunks written to clients.",
	})

	// FirstChunkSeconds is the time from provider call to first chunk.
	FirstChunkSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "soup",
		Subsystem: "gateway",
		Name:      "first_chunk_seconds",
		Help:      "Latency between opening the provider stream and receiving its first chunk.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})
)

// Register registers gateway metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AsksTotal,
			StreamsInFlight,
			ChunksRelayedTotal,
			FirstChunkSeconds,
		)
	})
}
