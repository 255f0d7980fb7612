// Package metrics provides Prometheus metrics for the task-analysis system.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/taskscope/taskscope/internal/job"
)

var (
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskscope_analyses_total",
			Help: "Total number of task analyses by predicted type and complexity",
		},
		[]string{"task_type", "complexity"},
	)
	AnalysesDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taskscope_analyses_degraded_total",
			Help: "Total number of analyses that fell back to the degraded default",
		},
	)
	AnalysisConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskscope_analysis_confidence",
			Help:    "Confidence score distribution of task analyses",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)
	JobsEnqueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskscope_jobs_enqueued_total",
			Help: "Total number of jobs enqueued",
		},
		[]string{"type", "priority"},
	)
	JobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskscope_jobs_completed_total",
			Help: "Total number of jobs completed successfully",
		},
		[]string{"type"},
	)
	JobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskscope_jobs_failed_total",
			Help: "Total number of jobs that failed",
		},
		[]string{"type"},
	)
	JobsRetried = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskscope_jobs_retried_total",
			Help: "Total number of job retries",
		},
		[]string{"type"},
	)
	JobsDeadLettered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskscope_jobs_dead_lettered_total",
			Help: "Total number of jobs moved to the dead letter queue",
		},
		[]string{"type"},
	)
	JobsInQueue = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "taskscope_jobs_in_queue",
			Help: "Current number of jobs in queue by status",
		},
		[]string{"status", "type"},
	)
	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskscope_job_duration_seconds",
			Help:    "Job execution duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"type", "status"},
	)
	JobWaitTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskscope_job_wait_time_seconds",
			Help:    "Time jobs spend waiting in queue before execution",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300, 600, 1800, 3600},
		},
		[]string{"type", "priority"},
	)
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskscope_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskscope_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskscope_queue_depth",
			Help: "Current depth of the job queue",
		},
	)
	DeadLetterQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskscope_dead_letter_queue_depth",
			Help: "Current depth of the dead letter queue",
		},
	)
)

// RecordAnalysis tracks one classification outcome.
func RecordAnalysis(taskType, complexity string, confidence float64, degraded bool) {
	AnalysesTotal.WithLabelValues(taskType, complexity).Inc()
	AnalysisConfidence.Observe(confidence)
	if degraded {
		AnalysesDegraded.Inc()
	}
}

func RecordJobEnqueued(jobType string, priority job.Priority) {
	JobsEnqueued.WithLabelValues(jobType, priority.String()).Inc()
}

func RecordJobCompleted(jobType string, duration time.Duration) {
	JobsCompleted.WithLabelValues(jobType).Inc()
	JobDuration.WithLabelValues(jobType, "completed").Observe(duration.Seconds())
}

func RecordJobFailed(jobType string, duration time.Duration) {
	JobsFailed.WithLabelValues(jobType).Inc()
	JobDuration.WithLabelValues(jobType, "failed").Observe(duration.Seconds())
}

func RecordJobRetried(jobType string) {
	JobsRetried.WithLabelValues(jobType).Inc()
}

func RecordJobDeadLettered(jobType string) {
	JobsDeadLettered.WithLabelValues(jobType).Inc()
}

func RecordJobWaitTime(jobType string, priority job.Priority, waitTime time.Duration) {
	JobWaitTime.WithLabelValues(jobType, priority.String()).Observe(waitTime.Seconds())
}

func UpdateJobGauges(jobsByStatus map[job.Status]map[string]int) {
	JobsInQueue.Reset()
	for status, typeMap := range jobsByStatus {
		for jobType, count := range typeMap {
			JobsInQueue.WithLabelValues(string(status), jobType).Set(float64(count))
		}
	}
}

func UpdateQueueDepth(depth int) {
	QueueDepth.Set(float64(depth))
}

func UpdateDeadLetterQueueDepth(depth int) {
	DeadLetterQueueDepth.Set(float64(depth))
}

func RecordHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
