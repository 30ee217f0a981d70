package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	buildDuration *prom.HistogramVec
	buildOutcome  *prom.CounterVec
	rendered      prom.Counter
	graphSize     prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.buildDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "sitebuilder",
			Name:      "build_duration_seconds",
			Help:      "Duration of build passes by kind",
			Buckets:   prom.DefBuckets,
		}, []string{"kind"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "build_outcomes_total",
			Help:      "Build pass outcomes by final status",
		}, []string{"kind", "outcome"})
		pr.rendered = prom.NewCounter(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "documents_rendered_total",
			Help:      "Documents whose output changed across all passes",
		})
		pr.graphSize = prom.NewGauge(prom.GaugeOpts{
			Namespace: "sitebuilder",
			Name:      "graph_nodes",
			Help:      "Live nodes in the most recent dependency graph",
		})
		reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.rendered, pr.graphSize)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(kind string, d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(kind string, outcome OutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(kind, string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddDocumentsRendered(n int) {
	if p == nil || p.rendered == nil {
		return
	}
	p.rendered.Add(float64(n))
}

func (p *PrometheusRecorder) SetGraphSize(nodes int) {
	if p == nil || p.graphSize == nil {
		return
	}
	p.graphSize.Set(float64(nodes))
}
