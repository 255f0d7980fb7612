// Package worker provides the background processor that consumes analysis
// jobs from the queue and dispatches them to registered handlers.
package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/taskscope/taskscope/internal/job"
	"github.com/taskscope/taskscope/internal/metrics"
	"github.com/taskscope/taskscope/internal/queue"
)

type JobHandler func(context.Context, *job.Job) error

type Worker struct {
	id           string
	queue        *queue.Queue
	handlers     map[string]JobHandler
	stop         chan bool
	pollInterval time.Duration
}

func NewWorker(id string, q *queue.Queue) *Worker {
	return &Worker{
		id:           id,
		queue:        q,
		handlers:     make(map[string]JobHandler),
		stop:         make(chan bool),
		pollInterval: time.Second,
	}
}

func (w *Worker) RegisterHandler(jobType string, handler JobHandler) {
	w.handlers[jobType] = handler
}

func (w *Worker) SetPollInterval(d time.Duration) {
	w.pollInterval = d
}

func (w *Worker) Start() {
	log.Printf("Worker %s started", w.id)

	for {
		select {
		case <-w.stop:
			log.Printf("Worker %s stopped", w.id)
			return
		default:
			j, err := w.queue.Dequeue(w.id)
			if err != nil || j == nil {
				time.Sleep(w.pollInterval)
				continue
			}

			w.processJob(j)
		}
	}
}

func (w *Worker) processJob(j *job.Job) {
	log.Printf("Worker %s processing job %s (type: %s)", w.id, j.ID, j.Type)

	ctx := context.Background()

	now := time.Now()
	j.Status = job.StatusRunning
	j.StartedAt = &now
	if err := w.queue.UpdateJob(j); err != nil {
		log.Printf("Failed to update job status to running: %v", err)
	}

	metrics.RecordJobWaitTime(j.Type, j.Priority, now.Sub(j.CreatedAt))

	handler, exists := w.handlers[j.Type]
	if !exists {
		j.Status = job.StatusFailed
		j.Error = fmt.Sprintf("no handler for job type: %s", j.Type)
		if err := w.queue.UpdateJob(j); err != nil {
			log.Printf("Failed to update job: %v", err)
		}
		return
	}

	err := handler(ctx, j)
	completedAt := time.Now()
	j.CompletedAt = &completedAt
	elapsed := completedAt.Sub(now)

	if err != nil {
		w.handleFailure(ctx, j, err, elapsed)
		return
	}

	j.Status = job.StatusCompleted
	if err := w.queue.UpdateJob(j); err != nil {
		log.Printf("Failed to update completed job: %v", err)
	}
	if repo := w.queue.Repository(); repo != nil {
		if err := repo.CompleteJob(ctx, j.ID, int(elapsed.Milliseconds())); err != nil {
			log.Printf("Failed to mirror job completion: %v", err)
		}
	}

	metrics.RecordJobCompleted(j.Type, elapsed)
	log.Printf("Job %s completed successfully", j.ID)
}

func (w *Worker) handleFailure(ctx context.Context, j *job.Job, handlerErr error, elapsed time.Duration) {
	j.RetryCount++

	if repo := w.queue.Repository(); repo != nil {
		if err := repo.IncrementRetryCount(ctx, j.ID); err != nil {
			log.Printf("Failed to mirror retry count: %v", err)
		}
	}

	if j.RetryCount < j.MaxRetries {
		j.Status = job.StatusPending
		j.ScheduledAt = time.Now().Add(time.Duration(j.RetryCount) * 10 * time.Second)
		if err := w.queue.Enqueue(j); err != nil {
			log.Printf("Failed to re-enqueue job: %v", err)
		}
		metrics.RecordJobRetried(j.Type)
		log.Printf("Job %s failed, will retry (%d/%d)", j.ID, j.RetryCount, j.MaxRetries)
		return
	}

	j.Status = job.StatusFailed
	j.Error = handlerErr.Error()
	if err := w.queue.MoveToDeadLetter(j, handlerErr.Error()); err != nil {
		log.Printf("Failed to move job to dead letter queue: %v", err)
	}
	if repo := w.queue.Repository(); repo != nil {
		if err := repo.FailJob(ctx, j.ID, handlerErr.Error(), int(elapsed.Milliseconds())); err != nil {
			log.Printf("Failed to mirror job failure: %v", err)
		}
	}

	metrics.RecordJobFailed(j.Type, elapsed)
	metrics.RecordJobDeadLettered(j.Type)
	log.Printf("Job %s failed permanently: %v", j.ID, handlerErr)
}

func (w *Worker) Stop() {
	w.stop <- true
}
