// Package queue provides the Redis-backed priority queue for analysis jobs.
// Jobs live in a hash keyed by ID; the pending set is a sorted set scored
// by scheduled time and inverted priority so earlier and more urgent jobs
// dequeue first.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/taskscope/taskscope/internal/job"
	"github.com/taskscope/taskscope/internal/repository"
)

const (
	jobsKey       = "analysis_jobs"
	pendingKey    = "analysis_queue"
	deadLetterKey = "analysis_dlq"
)

type Queue struct {
	client *redis.Client
	repo   repository.Repository
	ctx    context.Context
}

// NewQueue connects to Redis. repo may be nil; when set, job state changes
// are mirrored into it for history and reporting.
func NewQueue(redisAddr string, repo repository.Repository) (*Queue, error) {
	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Queue{
		client: client,
		repo:   repo,
		ctx:    ctx,
	}, nil
}

func (q *Queue) Enqueue(j *job.Job) error {
	jobJSON, err := j.ToJSON()
	if err != nil {
		return err
	}

	if err := q.client.HSet(q.ctx, jobsKey, j.ID, jobJSON).Err(); err != nil {
		return err
	}

	if q.repo != nil {
		if err := q.repo.SaveJob(q.ctx, j); err != nil {
			return fmt.Errorf("failed to mirror job to repository: %w", err)
		}
	}

	invertedPriority := float64(job.PriorityHigh - j.Priority)
	score := float64(j.ScheduledAt.Unix())*1000 + invertedPriority
	return q.client.ZAdd(q.ctx, pendingKey, redis.Z{
		Score:  score,
		Member: j.ID,
	}).Err()
}

// Dequeue pops the most urgent due job and returns it. Returns (nil, nil)
// when nothing is due. workerID is recorded in the mirrored job history.
func (q *Queue) Dequeue(workerID string) (*job.Job, error) {
	now := time.Now().Unix()
	maxScore := float64(now)*1000 + float64(job.PriorityHigh-job.PriorityLow)

	results, err := q.client.ZRangeByScore(q.ctx, pendingKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   fmt.Sprintf("%f", maxScore),
		Count: 1,
	}).Result()

	if err != nil || len(results) == 0 {
		return nil, err
	}

	jobID := results[0]

	q.client.ZRem(q.ctx, pendingKey, jobID)

	jobJSON, err := q.client.HGet(q.ctx, jobsKey, jobID).Result()
	if err != nil {
		return nil, err
	}

	j, err := job.FromJSON(jobJSON)
	if err != nil {
		return nil, err
	}

	if q.repo != nil {
		if err := q.repo.UpdateJobStatus(q.ctx, j.ID, job.StatusRunning, workerID); err != nil {
			return nil, fmt.Errorf("failed to mirror job status: %w", err)
		}
	}

	return j, nil
}

func (q *Queue) UpdateJob(j *job.Job) error {
	jobJSON, err := j.ToJSON()
	if err != nil {
		return err
	}
	return q.client.HSet(q.ctx, jobsKey, j.ID, jobJSON).Err()
}

func (q *Queue) GetJob(jobID string) (*job.Job, error) {
	jobJSON, err := q.client.HGet(q.ctx, jobsKey, jobID).Result()
	if err != nil {
		return nil, err
	}
	return job.FromJSON(jobJSON)
}

func (q *Queue) GetAllJobs() ([]*job.Job, error) {
	jobMap, err := q.client.HGetAll(q.ctx, jobsKey).Result()
	if err != nil {
		return nil, err
	}

	jobs := make([]*job.Job, 0, len(jobMap))
	for _, jobJSON := range jobMap {
		j, err := job.FromJSON(jobJSON)
		if err != nil {
			continue
		}
		jobs = append(jobs, j)
	}

	return jobs, nil
}

// MoveToDeadLetter removes a job from circulation and records it in the
// dead-letter set. The job stays in the hash so it remains inspectable.
func (q *Queue) MoveToDeadLetter(j *job.Job, reason string) error {
	now := time.Now()
	j.Status = job.StatusDeadLetter
	j.FailureReason = reason
	j.CompletedAt = &now

	if err := q.UpdateJob(j); err != nil {
		return err
	}

	if err := q.client.SAdd(q.ctx, deadLetterKey, j.ID).Err(); err != nil {
		return err
	}

	if q.repo != nil {
		if err := q.repo.MoveJobToDLQ(q.ctx, j.ID, reason); err != nil {
			return fmt.Errorf("failed to mirror dead-letter move: %w", err)
		}
	}

	return nil
}

func (q *Queue) GetDeadLetterJobs() ([]*job.Job, error) {
	ids, err := q.client.SMembers(q.ctx, deadLetterKey).Result()
	if err != nil {
		return nil, err
	}

	jobs := make([]*job.Job, 0, len(ids))
	for _, id := range ids {
		j, err := q.GetJob(id)
		if err != nil {
			continue
		}
		jobs = append(jobs, j)
	}

	return jobs, nil
}

// RetryDeadLetter re-enqueues a dead-lettered job with a reset retry budget.
func (q *Queue) RetryDeadLetter(jobID string) (*job.Job, error) {
	removed, err := q.client.SRem(q.ctx, deadLetterKey, jobID).Result()
	if err != nil {
		return nil, err
	}
	if removed == 0 {
		return nil, fmt.Errorf("job %s is not in the dead letter queue", jobID)
	}

	j, err := q.GetJob(jobID)
	if err != nil {
		return nil, err
	}

	j.Status = job.StatusPending
	j.RetryCount = 0
	j.FailureReason = ""
	j.Error = ""
	j.CompletedAt = nil
	j.ScheduledAt = time.Now()

	if err := q.Enqueue(j); err != nil {
		return nil, err
	}

	return j, nil
}

// Repository exposes the mirror repository, if configured.
func (q *Queue) Repository() repository.Repository {
	return q.repo
}

func (q *Queue) Close() error {
	return q.client.Close()
}
