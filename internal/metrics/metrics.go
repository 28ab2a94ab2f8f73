package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nudge"

// Recorder tracks job outcomes.
type Recorder struct {
	registry    *prometheus.Registry
	runs        *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
	degraded    prometheus.Counter
}

// NewRecorder registers job collectors plus Go and process collectors on a
// fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Job invocations by job name and outcome.",
		}, []string{"job", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Wall time of job invocations.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "job_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run per job.",
		}, []string{"job"}),
		degraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "video_degraded_total",
			Help:      "Evening videos delivered without narration.",
		}),
	}
	r.registry.MustRegister(
		r.runs,
		r.duration,
		r.lastSuccess,
		r.degraded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveRun records one job invocation.
func (r *Recorder) ObserveRun(job, outcome string, elapsed time.Duration, finished time.Time) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(job, outcome).Inc()
	r.duration.WithLabelValues(job).Observe(elapsed.Seconds())
	if outcome == "ok" {
		r.lastSuccess.WithLabelValues(job).Set(float64(finished.Unix()))
	}
}

// ObserveDegradedVideo counts a video that fell back to the silent render.
func (r *Recorder) ObserveDegradedVideo() {
	if r == nil {
		return
	}
	r.degraded.Inc()
}

// Registry exposes the underlying registry for scraping in tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
