// Package handlers provides job handlers for the worker. Each handler
// implements the business logic for a specific job type and can be
// registered with the worker to process jobs from the queue.
package handlers

import (
	"context"
	"errors"
	"log"

	"github.com/taskscope/taskscope/internal/classifier"
	"github.com/taskscope/taskscope/internal/job"
	"github.com/taskscope/taskscope/internal/metrics"
	"github.com/taskscope/taskscope/internal/repository"
)

// AnalyzeHandler classifies the job's description and stores the result on
// the job and, when a repository is configured, in classification history.
type AnalyzeHandler struct {
	analyzer *classifier.Analyzer
	repo     repository.Repository
}

func NewAnalyzeHandler(analyzer *classifier.Analyzer, repo repository.Repository) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer: analyzer,
		repo:     repo,
	}
}

func (h *AnalyzeHandler) Handle(ctx context.Context, j *job.Job) error {
	if j.Description == "" && j.Context == nil {
		return errors.New("analysis job has no description or context")
	}

	c := h.analyzer.Analyze(j.Description, j.Context)
	j.Result = &c

	metrics.RecordAnalysis(string(c.TaskType), string(c.Complexity), c.ConfidenceScore, c.Degraded)

	if h.repo != nil {
		if err := h.repo.SaveClassification(ctx, j.ID, j.Description, &c); err != nil {
			// The classification itself succeeded; losing history is not
			// worth burning a retry on.
			log.Printf("[Job %s] failed to persist classification: %v", j.ID, err)
		}
	}

	log.Printf("[Job %s] classified as %s/%s (confidence %.2f)",
		j.ID, c.TaskType, c.Complexity, c.ConfidenceScore)
	return nil
}
