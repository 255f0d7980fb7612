package repository

import (
	"context"
	"sync"

	"github.com/taskscope/taskscope/internal/classifier"
	"github.com/taskscope/taskscope/internal/job"
)

// MockRepository is an in-memory Repository used by tests across packages.
type MockRepository struct {
	mu                      sync.Mutex
	SaveJobCalls            []string
	UpdateJobStatusCalls    []UpdateJobStatusCall
	CompleteJobCalls        []CompleteJobCall
	FailJobCalls            []FailJobCall
	MoveJobToDLQCalls       []MoveJobToDLQCall
	IncrementRetryCalls     []string
	SaveClassificationCalls []SaveClassificationCall
	Jobs                    map[string]*job.Job
	Classifications         []ClassificationRecord
	Stats                   []ClassificationStats

	SaveJobError            error
	UpdateJobStatusError    error
	CompleteJobError        error
	FailJobError            error
	MoveJobToDLQError       error
	IncrementRetryError     error
	SaveClassificationError error
	StatsError              error
	RecentError             error
}

type UpdateJobStatusCall struct {
	JobID    string
	Status   job.Status
	WorkerID string
}

type CompleteJobCall struct {
	JobID      string
	DurationMs int
}

type FailJobCall struct {
	JobID      string
	Reason     string
	DurationMs int
}

type MoveJobToDLQCall struct {
	JobID  string
	Reason string
}

type SaveClassificationCall struct {
	JobID          string
	Description    string
	Classification *classifier.TaskClassification
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		Jobs: make(map[string]*job.Job),
	}
}

func (m *MockRepository) SaveJob(ctx context.Context, j *job.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveJobCalls = append(m.SaveJobCalls, j.ID)

	if m.SaveJobError != nil {
		return m.SaveJobError
	}

	jobCopy := *j
	m.Jobs[j.ID] = &jobCopy
	return nil
}

func (m *MockRepository) UpdateJobStatus(ctx context.Context, jobID string, status job.Status, workerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateJobStatusCalls = append(m.UpdateJobStatusCalls, UpdateJobStatusCall{
		JobID:    jobID,
		Status:   status,
		WorkerID: workerID,
	})

	if m.UpdateJobStatusError != nil {
		return m.UpdateJobStatusError
	}

	if j, exists := m.Jobs[jobID]; exists {
		j.Status = status
	}

	return nil
}

func (m *MockRepository) CompleteJob(ctx context.Context, jobID string, durationMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CompleteJobCalls = append(m.CompleteJobCalls, CompleteJobCall{
		JobID:      jobID,
		DurationMs: durationMs,
	})

	if m.CompleteJobError != nil {
		return m.CompleteJobError
	}

	if j, exists := m.Jobs[jobID]; exists {
		j.Status = job.StatusCompleted
	}

	return nil
}

func (m *MockRepository) FailJob(ctx context.Context, jobID string, reason string, durationMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.FailJobCalls = append(m.FailJobCalls, FailJobCall{
		JobID:      jobID,
		Reason:     reason,
		DurationMs: durationMs,
	})

	if m.FailJobError != nil {
		return m.FailJobError
	}

	if j, exists := m.Jobs[jobID]; exists {
		j.Status = job.StatusFailed
		j.FailureReason = reason
	}

	return nil
}

func (m *MockRepository) MoveJobToDLQ(ctx context.Context, jobID string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.MoveJobToDLQCalls = append(m.MoveJobToDLQCalls, MoveJobToDLQCall{
		JobID:  jobID,
		Reason: reason,
	})

	if m.MoveJobToDLQError != nil {
		return m.MoveJobToDLQError
	}

	if j, exists := m.Jobs[jobID]; exists {
		j.Status = job.StatusDeadLetter
		j.FailureReason = reason
	}

	return nil
}

func (m *MockRepository) IncrementRetryCount(ctx context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.IncrementRetryCalls = append(m.IncrementRetryCalls, jobID)

	if m.IncrementRetryError != nil {
		return m.IncrementRetryError
	}

	if j, exists := m.Jobs[jobID]; exists {
		j.RetryCount++
	}

	return nil
}

func (m *MockRepository) SaveClassification(ctx context.Context, jobID string, description string, c *classifier.TaskClassification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveClassificationCalls = append(m.SaveClassificationCalls, SaveClassificationCall{
		JobID:          jobID,
		Description:    description,
		Classification: c,
	})

	if m.SaveClassificationError != nil {
		return m.SaveClassificationError
	}

	m.Classifications = append(m.Classifications, ClassificationRecord{
		JobID:           jobID,
		Description:     description,
		TaskType:        string(c.TaskType),
		Complexity:      string(c.Complexity),
		TimeSensitivity: string(c.TimeSensitivity),
		Confidence:      c.ConfidenceScore,
		Degraded:        c.Degraded,
	})

	return nil
}

func (m *MockRepository) GetClassificationStats(ctx context.Context, hours int) ([]ClassificationStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.StatsError != nil {
		return nil, m.StatsError
	}

	return m.Stats, nil
}

func (m *MockRepository) GetRecentClassifications(ctx context.Context, limit int) ([]ClassificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.RecentError != nil {
		return nil, m.RecentError
	}

	if len(m.Classifications) > limit {
		return m.Classifications[:limit], nil
	}

	return m.Classifications, nil
}

func (m *MockRepository) GetClassificationsByType(ctx context.Context, taskType string, limit int) ([]ClassificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var filtered []ClassificationRecord
	for _, rec := range m.Classifications {
		if rec.TaskType == taskType {
			filtered = append(filtered, rec)
			if len(filtered) >= limit {
				break
			}
		}
	}

	return filtered, nil
}

func (m *MockRepository) Close() error {
	return nil
}

func (m *MockRepository) GetSaveJobCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.SaveJobCalls)
}

func (m *MockRepository) GetUpdateJobStatusCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.UpdateJobStatusCalls)
}

func (m *MockRepository) GetSaveClassificationCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.SaveClassificationCalls)
}

func (m *MockRepository) WasJobSaved(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, exists := m.Jobs[jobID]
	return exists
}

func (m *MockRepository) GetJobStatus(jobID string) (job.Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if j, exists := m.Jobs[jobID]; exists {
		return j.Status, true
	}

	return "", false
}

var _ Repository = (*MockRepository)(nil)
