package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "sdkdocs"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry          *prom.Registry
	stageDuration     *prom.HistogramVec
	stageResults      *prom.CounterVec
	buildDuration     prom.Histogram
	buildOutcome      *prom.CounterVec
	taskDuration      *prom.HistogramVec
	taskResults       *prom.CounterVec
	workers           *prom.GaugeVec
	duplicatesRemoved prom.Counter
	mergeWarnings     prom.Counter
	brokenLinks       prom.Gauge
}

// taskBuckets spans quick conversions to hour-long site builds.
var taskBuckets = []float64{0.5, 1, 5, 15, 30, 60, 180, 600, 1800, 3600}

// NewPrometheusRecorder constructs the metrics and registers them with reg,
// or with a fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual pipeline stages",
			Buckets:   taskBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total pipeline duration",
			Buckets:   taskBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Pipeline outcomes by final status",
		}, []string{"outcome"}),
		taskDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "component_task_duration_seconds",
			Help:      "Duration of per-component tasks by phase",
			Buckets:   taskBuckets,
		}, []string{"phase", "result"}),
		taskResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "component_task_results_total",
			Help:      "Per-component task results by phase",
		}, []string{"phase", "result"}),
		workers: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "workers",
			Help:      "Worker pool size by phase",
		}, []string{"phase"}),
		duplicatesRemoved: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_fragments_removed_total",
			Help:      "Fragments removed because the core component documents them",
		}),
		mergeWarnings: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "merge_warnings_total",
			Help:      "Components skipped while merging the site",
		}),
		brokenLinks: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "broken_links",
			Help:      "Broken internal links found in the merged site",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.buildDuration, pr.buildOutcome,
		pr.taskDuration, pr.taskResults, pr.workers, pr.duplicatesRemoved, pr.mergeWarnings, pr.brokenLinks)
	return pr
}

// Registry returns the registry the metrics are registered with.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.registry }

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObserveTaskDuration(phase string, d time.Duration, result ResultLabel) {
	p.taskDuration.WithLabelValues(phase, string(result)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncTaskResult(phase string, result ResultLabel) {
	p.taskResults.WithLabelValues(phase, string(result)).Inc()
}

func (p *PrometheusRecorder) SetWorkers(phase string, n int) {
	p.workers.WithLabelValues(phase).Set(float64(n))
}

func (p *PrometheusRecorder) AddDuplicatesRemoved(n int) {
	p.duplicatesRemoved.Add(float64(n))
}

func (p *PrometheusRecorder) AddMergeWarnings(n int) {
	p.mergeWarnings.Add(float64(n))
}

func (p *PrometheusRecorder) SetBrokenLinks(n int) {
	p.brokenLinks.Set(float64(n))
}

// WriteTextfile writes the registry to path in the text exposition format.
// The file is replaced atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.registry)
}
