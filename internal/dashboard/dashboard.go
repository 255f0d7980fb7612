// Package dashboard implements the web-based monitoring interface for queue metrics and job status.
package dashboard

import (
	"net/http"
	"time"

	"github.com/taskscope/taskscope/internal/httputil"
	"github.com/taskscope/taskscope/internal/job"
	"github.com/taskscope/taskscope/internal/queue"
)

type Dashboard struct {
	queue *queue.Queue
}

type Stats struct {
	TotalJobs       int            `json:"total_jobs"`
	PendingJobs     int            `json:"pending_jobs"`
	RunningJobs     int            `json:"running_jobs"`
	CompletedJobs   int            `json:"completed_jobs"`
	FailedJobs      int            `json:"failed_jobs"`
	DeadLetterJobs  int            `json:"dead_letter_jobs"`
	JobsByType      map[string]int `json:"jobs_by_type"`
	AnalysesByType  map[string]int `json:"analyses_by_type"`
	DegradedResults int            `json:"degraded_results"`
	AverageWaitTime string         `json:"average_wait_time"`
	LastUpdated     time.Time      `json:"last_updated"`
}

type JobHistory struct {
	JobID       string     `json:"job_id"`
	Type        string     `json:"type"`
	Status      job.Status `json:"status"`
	TaskType    string     `json:"task_type,omitempty"`
	Complexity  string     `json:"complexity,omitempty"`
	Confidence  float64    `json:"confidence,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at"`
	Duration    string     `json:"duration"`
}

func NewDashboard(q *queue.Queue) *Dashboard {
	return &Dashboard{queue: q}
}

func (d *Dashboard) GetStats(w http.ResponseWriter, r *http.Request) {
	jobs, err := d.queue.GetAllJobs()
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	stats := Stats{
		TotalJobs:      len(jobs),
		JobsByType:     make(map[string]int),
		AnalysesByType: make(map[string]int),
		LastUpdated:    time.Now(),
	}

	var totalWaitTime time.Duration
	waitCount := 0

	for _, j := range jobs {
		switch j.Status {
		case job.StatusPending:
			stats.PendingJobs++
		case job.StatusRunning:
			stats.RunningJobs++
		case job.StatusCompleted:
			stats.CompletedJobs++
		case job.StatusFailed:
			stats.FailedJobs++
		case job.StatusDeadLetter:
			stats.DeadLetterJobs++
		}

		stats.JobsByType[j.Type]++

		if j.Result != nil {
			stats.AnalysesByType[string(j.Result.TaskType)]++
			if j.Result.Degraded {
				stats.DegradedResults++
			}
		}

		if j.StartedAt != nil {
			waitTime := j.StartedAt.Sub(j.CreatedAt)
			totalWaitTime += waitTime
			waitCount++
		}
	}

	if waitCount > 0 {
		avgWait := totalWaitTime / time.Duration(waitCount)
		stats.AverageWaitTime = avgWait.Round(time.Millisecond).String()
	} else {
		stats.AverageWaitTime = "N/A"
	}

	httputil.WriteJSON(w, stats, http.StatusOK)
}

func (d *Dashboard) GetRecentJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := d.queue.GetAllJobs()
	if err != nil {
		httputil.WriteJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	history := []JobHistory{}

	for _, j := range jobs {
		if j.CompletedAt == nil {
			continue
		}
		if j.CompletedAt.Before(cutoff) {
			continue
		}

		var duration string
		if j.StartedAt != nil {
			duration = j.CompletedAt.Sub(*j.StartedAt).Round(time.Millisecond).String()
		}

		entry := JobHistory{
			JobID:       j.ID,
			Type:        j.Type,
			Status:      j.Status,
			CreatedAt:   j.CreatedAt,
			CompletedAt: j.CompletedAt,
			Duration:    duration,
		}
		if j.Result != nil {
			entry.TaskType = string(j.Result.TaskType)
			entry.Complexity = string(j.Result.Complexity)
			entry.Confidence = j.Result.ConfidenceScore
		}

		history = append(history, entry)
	}

	httputil.WriteJSON(w, history, http.StatusOK)
}
