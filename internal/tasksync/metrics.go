package tasksync

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Load sources.
const (
	SourceRemote = "remote"
	SourceCache  = "cache"
	SourceNone   = "none"
)

// Metrics groups the Prometheus instruments of the sync layer.
type Metrics struct {
	Loads           *prometheus.CounterVec
	Mutations       *prometheus.CounterVec
	StorageErrors   *prometheus.CounterVec
	SupersededReads prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics registers the sync instruments on reg.
// A nil reg gets a private registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		Loads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doit",
			Name:      "task_loads_total",
			Help:      "Task collection loads by the source that served them.",
		}, []string{"source"}),
		Mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doit",
			Name:      "task_mutations_total",
			Help:      "Task mutations by operation and result.",
		}, []string{"op", "result"}),
		StorageErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doit",
			Name:      "cache_storage_errors_total",
			Help:      "Absorbed durable cache failures by operation.",
		}, []string{"op"}),
		SupersededReads: f.NewCounter(prometheus.CounterOpts{
			Namespace: "doit",
			Name:      "superseded_reads_total",
			Help:      "Reads whose result was not published because a newer read or patch happened.",
		}),
		gatherer: reg,
	}
}

// LogSummary writes every counter to log at debug level.
func (m *Metrics) LogSummary(log *slog.Logger) {
	families, err := m.gatherer.Gather()
	if err != nil {
		log.Debug("gather metrics", "error", err)
		return
	}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			attrs := []any{"name", mf.GetName(), "value", metric.GetCounter().GetValue()}
			for _, lp := range metric.GetLabel() {
				attrs = append(attrs, lp.GetName(), lp.GetValue())
			}
			log.Debug("metric", attrs...)
		}
	}
}
