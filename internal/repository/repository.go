// Package repository provides PostgreSQL persistence for analysis jobs and
// their classification results.
package repository

import (
	"context"
	"time"

	"github.com/taskscope/taskscope/internal/classifier"
	"github.com/taskscope/taskscope/internal/job"
)

type Repository interface {
	SaveJob(ctx context.Context, j *job.Job) error
	UpdateJobStatus(ctx context.Context, jobID string, status job.Status, workerID string) error
	CompleteJob(ctx context.Context, jobID string, durationMs int) error
	FailJob(ctx context.Context, jobID string, reason string, durationMs int) error
	MoveJobToDLQ(ctx context.Context, jobID string, reason string) error
	IncrementRetryCount(ctx context.Context, jobID string) error

	SaveClassification(ctx context.Context, jobID string, description string, c *classifier.TaskClassification) error
	GetClassificationStats(ctx context.Context, hours int) ([]ClassificationStats, error)
	GetRecentClassifications(ctx context.Context, limit int) ([]ClassificationRecord, error)
	GetClassificationsByType(ctx context.Context, taskType string, limit int) ([]ClassificationRecord, error)

	Close() error
}

// ClassificationStats is one aggregate row: how often a (type, complexity)
// pair was seen and the average estimates that came with it.
type ClassificationStats struct {
	TaskType           string  `json:"task_type"`
	Complexity         string  `json:"complexity"`
	Count              int     `json:"count"`
	AvgConfidence      float64 `json:"avg_confidence"`
	AvgGPUMemoryGB     float64 `json:"avg_gpu_memory_gb"`
	AvgDurationMinutes float64 `json:"avg_duration_minutes"`
	DegradedCount      int     `json:"degraded_count"`
}

// ClassificationRecord is one stored classification result.
type ClassificationRecord struct {
	JobID           string    `json:"job_id"`
	Description     string    `json:"description"`
	TaskType        string    `json:"task_type"`
	Complexity      string    `json:"complexity"`
	TimeSensitivity string    `json:"time_sensitivity"`
	Confidence      float64   `json:"confidence"`
	Degraded        bool      `json:"degraded"`
	CreatedAt       time.Time `json:"created_at"`
}
