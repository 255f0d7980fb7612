// Package job defines the analysis-job domain model shared by the queue,
// worker and persistence layers: job metadata, status and priority
// definitions, and serialization helpers.
package job

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/taskscope/taskscope/internal/classifier"
)

type (
	Status   string
	Priority int
)

const (
	StatusPending    Status = "pending"
	StatusRunning    Status = "running"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusDeadLetter Status = "dead_letter"
)

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Job is a queued unit of work. Analysis jobs carry a Description and an
// optional Context; report and digest jobs carry their parameters in
// Payload. Result is filled by the worker once analysis completes.
type Job struct {
	ID            string                         `json:"id"`
	Type          string                         `json:"type"`
	Description   string                         `json:"description,omitempty"`
	Context       *classifier.AnalysisContext    `json:"context,omitempty"`
	Payload       map[string]any                 `json:"payload,omitempty"`
	Priority      Priority                       `json:"priority"`
	Status        Status                         `json:"status"`
	RetryCount    int                            `json:"retry_count"`
	MaxRetries    int                            `json:"max_retries"`
	CreatedAt     time.Time                      `json:"created_at"`
	ScheduledAt   time.Time                      `json:"scheduled_at"`
	StartedAt     *time.Time                     `json:"started_at,omitempty"`
	CompletedAt   *time.Time                     `json:"completed_at,omitempty"`
	Error         string                         `json:"error,omitempty"`
	FailureReason string                         `json:"failure_reason,omitempty"`
	Result        *classifier.TaskClassification `json:"result,omitempty"`
}

// TypeAnalyze is the job type handled by the classifier worker; the other
// two are maintenance jobs.
const (
	TypeAnalyze = "analyze_text"
	TypeReport  = "generate_report"
	TypeDigest  = "send_digest"
)

func New(jobType string, priority Priority) *Job {
	return &Job{
		ID:          uuid.New().String(),
		Type:        jobType,
		Priority:    priority,
		Status:      StatusPending,
		MaxRetries:  3,
		RetryCount:  0,
		CreatedAt:   time.Now(),
		ScheduledAt: time.Now(),
	}
}

// NewAnalysis builds an analysis job for a description. When the caller has
// no priority preference, PriorityFor on a first-pass classification gives
// a sensible one.
func NewAnalysis(description string, ctx *classifier.AnalysisContext, priority Priority) *Job {
	j := New(TypeAnalyze, priority)
	j.Description = description
	j.Context = ctx
	return j
}

// PriorityFor maps a predicted time sensitivity onto a queue priority:
// real-time work jumps the queue, interactive work goes ahead of the bulk,
// everything else waits its turn.
func PriorityFor(s classifier.TimeSensitivity) Priority {
	switch s {
	case classifier.SensitivityRealTime:
		return PriorityHigh
	case classifier.SensitivityInteractive:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func (j *Job) ToJSON() (string, error) {
	data, err := json.Marshal(j)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func (j *Job) ShouldMoveToDeadLetter() bool {
	return j.RetryCount >= j.MaxRetries && j.Status == StatusFailed
}

func FromJSON(data string) (*Job, error) {
	var j Job
	if err := json.Unmarshal([]byte(data), &j); err != nil {
		return nil, err
	}

	return &j, nil
}
