package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "awesometheme"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once          sync.Once
	stageDuration *prom.HistogramVec
	buildDuration prom.Histogram
	stageResults  *prom.CounterVec
	buildOutcome  *prom.CounterVec
	eventDuration *prom.HistogramVec
	documents     *prom.CounterVec
	postProcess   *prom.CounterVec
	warnings      *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.eventDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "event_duration_seconds",
			Help:      "Time spent in lifecycle event listeners",
			Buckets:   prom.DefBuckets,
		}, []string{"event"})
		pr.documents = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed by phase",
		}, []string{"phase"})
		pr.postProcess = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "postprocess_pages_total",
			Help:      "Post-processed pages by result",
		}, []string{"result"})
		pr.warnings = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "warnings_total",
			Help:      "Reported build warnings by error category",
		}, []string{"category"})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
			pr.eventDuration, pr.documents, pr.postProcess, pr.warnings)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObserveEventDuration(event string, d time.Duration) {
	if p == nil || p.eventDuration == nil {
		return
	}
	p.eventDuration.WithLabelValues(event).Observe(d.Seconds())
}

func (p *PrometheusRecorder) AddDocuments(phase string, n int) {
	if p == nil || p.documents == nil || n <= 0 {
		return
	}
	p.documents.WithLabelValues(phase).Add(float64(n))
}

func (p *PrometheusRecorder) IncPostProcess(result PostProcessLabel) {
	if p == nil || p.postProcess == nil {
		return
	}
	p.postProcess.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncWarning(category string) {
	if p == nil || p.warnings == nil {
		return
	}
	p.warnings.WithLabelValues(category).Inc()
}
