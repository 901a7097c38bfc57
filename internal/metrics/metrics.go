package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lipsyncd_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "lipsyncd_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	JobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lipsyncd_jobs_total",
			Help: "Total number of conversion jobs by provider and status",
		},
		[]string{"provider", "status"},
	)

	TranscriptionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "lipsyncd_transcription_latency_seconds",
			Help: "Whisper transcription latency in seconds",
		},
	)

	EventsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lipsyncd_events_emitted_total",
			Help: "Total number of timeline events emitted",
		},
	)

	ActiveJobs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lipsyncd_active_jobs",
			Help: "Number of jobs currently processing",
		},
	)
)
