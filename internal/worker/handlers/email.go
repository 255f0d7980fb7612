package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/taskscope/taskscope/internal/job"
	"github.com/taskscope/taskscope/internal/repository"
)

// DigestHandler emails a summary of recent classification activity.
// The payload must carry a "to" address; "hours" narrows the window
// (default 24).
type DigestHandler struct {
	repo repository.Repository
}

func NewDigestHandler(repo repository.Repository) *DigestHandler {
	return &DigestHandler{repo: repo}
}

func (h *DigestHandler) Handle(ctx context.Context, j *job.Job) error {
	to, ok := j.Payload["to"].(string)
	if !ok {
		return errors.New("missing 'to' field")
	}

	hours := 24
	if v, ok := j.Payload["hours"].(float64); ok && v > 0 {
		hours = int(v)
	}

	stats, err := h.repo.GetClassificationStats(ctx, hours)
	if err != nil {
		return fmt.Errorf("failed to load classification stats: %w", err)
	}

	subject := fmt.Sprintf("Task analysis digest (last %dh)", hours)
	body := buildDigestBody(stats, hours)

	fromName := os.Getenv("FROM_NAME")
	fromAddress := os.Getenv("FROM_ADDRESS")
	from := mail.NewEmail(fromName, fromAddress)
	toEmail := mail.NewEmail("", to)
	email := mail.NewSingleEmail(from, subject, toEmail, body, body)
	client := sendgrid.NewSendClient(os.Getenv("EMAIL_API_KEY"))
	response, err := client.Send(email)
	if err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}

	log.Printf("[Job %s] Digest sent to %s (status: %d)", j.ID, to, response.StatusCode)
	return nil
}

func buildDigestBody(stats []repository.ClassificationStats, hours int) string {
	var b strings.Builder

	if len(stats) == 0 {
		fmt.Fprintf(&b, "No tasks were analyzed in the last %d hours.\n", hours)
		return b.String()
	}

	total := 0
	degraded := 0
	for _, s := range stats {
		total += s.Count
		degraded += s.DegradedCount
	}

	fmt.Fprintf(&b, "Analyzed %d tasks in the last %d hours (%d degraded).\n\n", total, hours, degraded)
	for _, s := range stats {
		fmt.Fprintf(&b, "- %s/%s: %d tasks, avg confidence %.2f, avg GPU %.1f GB, avg duration %.0f min\n",
			s.TaskType, s.Complexity, s.Count, s.AvgConfidence, s.AvgGPUMemoryGB, s.AvgDurationMinutes)
	}

	return b.String()
}
