package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	fetchDuration *prom.HistogramVec
	buildOutcome  *prom.CounterVec
	pagesBuilt    prom.Gauge
	sectionsBuilt prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docsite",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "docsite",
			Name:      "build_duration_seconds",
			Help:      "Total pipeline duration",
			Buckets:   prom.DefBuckets,
		}),
		fetchDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "docsite",
			Name:      "source_fetch_duration_seconds",
			Help:      "Duration of individual source document fetches",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "docsite",
			Name:      "build_outcomes_total",
			Help:      "Pipeline outcomes by final status",
		}, []string{"outcome"}),
		pagesBuilt: prom.NewGauge(prom.GaugeOpts{
			Namespace: "docsite",
			Name:      "pages_built",
			Help:      "Pages produced by the last pipeline run",
		}),
		sectionsBuilt: prom.NewGauge(prom.GaugeOpts{
			Namespace: "docsite",
			Name:      "sections_built",
			Help:      "Sections produced by the last pipeline run",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.fetchDuration,
		pr.buildOutcome, pr.pagesBuilt, pr.sectionsBuilt)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveFetchDuration(d time.Duration, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	p.fetchDuration.WithLabelValues(result).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) SetPagesBuilt(n int)    { p.pagesBuilt.Set(float64(n)) }
func (p *PrometheusRecorder) SetSectionsBuilt(n int) { p.sectionsBuilt.Set(float64(n)) }

// HTTPHandler returns an http.Handler serving Prometheus metrics for the
// provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
