package main

import (
	"log"
	"time"

	"github.com/taskscope/taskscope/internal/job"
	"github.com/taskscope/taskscope/internal/metrics"
	"github.com/taskscope/taskscope/internal/queue"
)

func startMetricsCollector(q *queue.Queue) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		updateQueueMetrics(q)
	}
}

func updateQueueMetrics(q *queue.Queue) {
	jobs, err := q.GetAllJobs()
	if err != nil {
		log.Printf("Failed to get jobs for metrics: %v", err)
		return
	}

	jobsByStatus := make(map[job.Status]map[string]int)
	for _, j := range jobs {
		if jobsByStatus[j.Status] == nil {
			jobsByStatus[j.Status] = make(map[string]int)
		}
		jobsByStatus[j.Status][j.Type]++
	}

	metrics.UpdateJobGauges(jobsByStatus)
	metrics.UpdateQueueDepth(len(jobs))

	dlqJobs, err := q.GetDeadLetterJobs()
	if err == nil {
		metrics.UpdateDeadLetterQueueDepth(len(dlqJobs))
	}
}
