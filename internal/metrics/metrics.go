// Package metrics exposes Prometheus instrumentation for the generation pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ModeAuto   = "auto"
	ModeManual = "manual"
)

// Recorder is safe to use as a nil pointer, which records nothing.
type Recorder struct {
	generations *prometheus.CounterVec
	llmDuration *prometheus.HistogramVec
}

func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "resumeai",
			Name:      "generations_total",
			Help:      "Generation requests by mode and terminal outcome.",
		}, []string{"mode", "outcome"}),
		llmDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "resumeai",
			Name:      "llm_request_duration_seconds",
			Help:      "Latency of model completion calls.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90},
		}, []string{"status"}),
	}
	reg.MustRegister(r.generations, r.llmDuration)
	return r
}

func (r *Recorder) Generation(mode, outcome string) {
	if r == nil {
		return
	}
	r.generations.WithLabelValues(mode, outcome).Inc()
}

func (r *Recorder) LLMCall(took time.Duration, err error) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.llmDuration.WithLabelValues(status).Observe(took.Seconds())
}
