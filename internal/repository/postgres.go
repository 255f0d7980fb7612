package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/taskscope/taskscope/internal/classifier"
	"github.com/taskscope/taskscope/internal/job"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(connectionString string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) SaveJob(ctx context.Context, j *job.Job) error {
	jobContext, err := json.Marshal(j.Context)
	if err != nil {
		return fmt.Errorf("failed to marshal job context: %w", err)
	}

	query := `
		INSERT INTO job_history (
			job_id, type, description, context, priority, status,
			retry_count, failure_reason, created_at, scheduled_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (job_id) DO UPDATE SET
			status = EXCLUDED.status,
			retry_count = EXCLUDED.retry_count,
			failure_reason = EXCLUDED.failure_reason,
			scheduled_at = EXCLUDED.scheduled_at
	`

	var scheduledAt any
	if j.ScheduledAt.IsZero() {
		scheduledAt = nil
	} else {
		scheduledAt = j.ScheduledAt
	}

	_, err = r.db.ExecContext(
		ctx,
		query,
		j.ID,
		j.Type,
		j.Description,
		jobContext,
		j.Priority,
		j.Status,
		j.RetryCount,
		j.FailureReason,
		j.CreatedAt,
		scheduledAt,
	)

	return err
}

func (r *PostgresRepository) UpdateJobStatus(ctx context.Context, jobID string, status job.Status, workerID string) error {
	statusStr := string(status)
	query := `
		UPDATE job_history
		SET status = $1,
		    started_at = CASE WHEN $4::text = 'running' THEN NOW() ELSE started_at END,
		    worker_id = $2
		WHERE job_id = $3
	`

	_, err := r.db.ExecContext(ctx, query, statusStr, workerID, jobID, statusStr)
	return err
}

func (r *PostgresRepository) CompleteJob(ctx context.Context, jobID string, durationMs int) error {
	query := `
		UPDATE job_history
		SET status = 'completed',
		    completed_at = NOW(),
		    duration_ms = $1
		WHERE job_id = $2
	`
	_, err := r.db.ExecContext(ctx, query, durationMs, jobID)

	return err
}

func (r *PostgresRepository) FailJob(ctx context.Context, jobID string, reason string, durationMs int) error {
	query := `
		UPDATE job_history
		SET status = 'failed',
		    completed_at = NOW(),
		    failure_reason = $1,
		    duration_ms = $2,
		    last_error = $1
		WHERE job_id = $3
	`
	_, err := r.db.ExecContext(ctx, query, reason, durationMs, jobID)

	return err
}

func (r *PostgresRepository) MoveJobToDLQ(ctx context.Context, jobID string, reason string) error {
	query := `
		UPDATE job_history
		SET status = 'dead_letter',
		    failure_reason = $1,
		    moved_to_dlq_at = NOW()
		WHERE job_id = $2
	`
	_, err := r.db.ExecContext(ctx, query, reason, jobID)

	return err
}

func (r *PostgresRepository) IncrementRetryCount(ctx context.Context, jobID string) error {
	query := `
		UPDATE job_history
		SET retry_count = retry_count + 1
		WHERE job_id = $1
	`
	_, err := r.db.ExecContext(ctx, query, jobID)

	return err
}

func (r *PostgresRepository) SaveClassification(ctx context.Context, jobID string, description string, c *classifier.TaskClassification) error {
	resources, err := json.Marshal(c.ResourceRequirements)
	if err != nil {
		return fmt.Errorf("failed to marshal resource requirements: %w", err)
	}

	tags, err := json.Marshal(c.Tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}

	query := `
		INSERT INTO classification_history (
			job_id, description, task_type, complexity, time_sensitivity,
			confidence, resources, tags, degraded, degraded_reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		jobID,
		description,
		string(c.TaskType),
		string(c.Complexity),
		string(c.TimeSensitivity),
		c.ConfidenceScore,
		resources,
		tags,
		c.Degraded,
		c.DegradedReason,
	)

	return err
}

func (r *PostgresRepository) GetClassificationStats(ctx context.Context, hours int) ([]ClassificationStats, error) {
	query := `
		SELECT
			task_type, complexity, COUNT(*) as count,
			COALESCE(AVG(confidence), 0) as avg_confidence,
			COALESCE(AVG((resources->>'gpu_memory_gb')::float), 0) as avg_gpu_memory_gb,
			COALESCE(AVG((resources->>'estimated_duration_minutes')::float), 0) as avg_duration_minutes,
			COUNT(*) FILTER (WHERE degraded) as degraded_count
		FROM classification_history
		WHERE created_at > NOW() - INTERVAL '1 hour' * $1
		GROUP BY task_type, complexity
		ORDER BY task_type, complexity
	`
	rows, err := r.db.QueryContext(ctx, query, hours)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	var stats []ClassificationStats
	for rows.Next() {
		var s ClassificationStats
		if err := rows.Scan(
			&s.TaskType,
			&s.Complexity,
			&s.Count,
			&s.AvgConfidence,
			&s.AvgGPUMemoryGB,
			&s.AvgDurationMinutes,
			&s.DegradedCount,
		); err != nil {
			return nil, err
		}

		stats = append(stats, s)
	}

	return stats, rows.Err()
}

func (r *PostgresRepository) GetRecentClassifications(ctx context.Context, limit int) ([]ClassificationRecord, error) {
	query := `
		SELECT
			job_id, description, task_type, complexity, time_sensitivity,
			confidence, degraded, created_at
		FROM classification_history
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	return scanClassificationRecords(rows)
}

func (r *PostgresRepository) GetClassificationsByType(ctx context.Context, taskType string, limit int) ([]ClassificationRecord, error) {
	query := `
		SELECT
			job_id, description, task_type, complexity, time_sensitivity,
			confidence, degraded, created_at
		FROM classification_history
		WHERE task_type = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, taskType, limit)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	return scanClassificationRecords(rows)
}

func scanClassificationRecords(rows *sql.Rows) ([]ClassificationRecord, error) {
	var records []ClassificationRecord
	for rows.Next() {
		var rec ClassificationRecord
		if err := rows.Scan(
			&rec.JobID,
			&rec.Description,
			&rec.TaskType,
			&rec.Complexity,
			&rec.TimeSensitivity,
			&rec.Confidence,
			&rec.Degraded,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	return records, rows.Err()
}

func (r *PostgresRepository) DB() *sql.DB {
	return r.db
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
