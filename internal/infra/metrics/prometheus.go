package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExtractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framelift_extractions_total",
		Help: "Total number of extraction runs, by outcome",
	}, []string{"outcome"})

	ExtractionFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framelift_extraction_failures_total",
		Help: "Total number of failed extraction runs, by failure code",
	}, []string{"code"})

	ExtractionStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "framelift_extraction_stage_duration_seconds",
		Help:    "Duration of extraction pipeline stages",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "framelift_frames_extracted_total",
		Help: "Total number of frames extracted across all runs",
	})

	ValidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framelift_validations_total",
		Help: "Total number of request validations, by verdict",
	}, []string{"verdict"})

	ImportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framelift_imports_total",
		Help: "Total number of video import attempts, by outcome",
	}, []string{"outcome"})

	ActiveExtractions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "framelift_active_extractions",
		Help: "Number of extractions currently running",
	})

	JobsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framelift_jobs_processed_total",
		Help: "Total number of queued jobs processed, by verdict",
	}, []string{"verdict"})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framelift_retry_total",
		Help: "Total number of job retries, by attempt number",
	}, []string{"attempt"})
)
