package handlers

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/taskscope/taskscope/internal/job"
)

type ReportPayload struct {
	ReportType string `json:"report_type"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Format     string `json:"format"`
	OutputPath string `json:"output_path"`
}

// ReportGenerator exports classification-history reports to CSV or JSON.
type ReportGenerator struct {
	db *sql.DB
}

func NewReportGenerator(db *sql.DB) *ReportGenerator {
	return &ReportGenerator{db: db}
}

func (rg *ReportGenerator) Handle(ctx context.Context, j *job.Job) error {
	payload, err := parseReportPayload(j.Payload)
	if err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}

	startTime, endTime, err := parseTimeRange(payload)
	if err != nil {
		return fmt.Errorf("invalid time range: %w", err)
	}

	log.Printf("[Job %s] Generating %s report (format: %s, period: %s to %s)",
		j.ID, payload.ReportType, payload.Format, startTime.Format(time.RFC3339), endTime.Format(time.RFC3339))

	var data [][]string
	switch payload.ReportType {
	case "classification_summary":
		data, err = rg.generateClassificationSummary(ctx, startTime, endTime)
	case "type_breakdown":
		data, err = rg.generateTypeBreakdown(ctx, startTime, endTime)
	case "confidence_distribution":
		data, err = rg.generateConfidenceDistribution(ctx, startTime, endTime)
	case "hourly_breakdown":
		data, err = rg.generateHourlyBreakdown(ctx, startTime, endTime)
	default:
		return fmt.Errorf("unsupported report type: %s (available: classification_summary, type_breakdown, confidence_distribution, hourly_breakdown)", payload.ReportType)
	}

	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if ctx.Err() != nil {
		log.Printf("[Job %s] Job cancelled after data generation", j.ID)
		return ctx.Err()
	}

	outputFile, err := saveReport(payload, data)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	log.Printf("[Job %s] Report generated successfully: %s (%d rows)", j.ID, outputFile, len(data)-1)
	return nil
}

func parseReportPayload(payload map[string]any) (*ReportPayload, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var rp ReportPayload
	if err := json.Unmarshal(data, &rp); err != nil {
		return nil, err
	}

	if rp.ReportType == "" {
		return nil, errors.New("missing required field: report_type")
	}
	if rp.OutputPath == "" {
		rp.OutputPath = "./reports"
	}
	if rp.Format == "" {
		rp.Format = "csv"
	}

	return &rp, nil
}

func parseTimeRange(payload *ReportPayload) (time.Time, time.Time, error) {
	var startTime, endTime time.Time
	var err error

	if payload.StartTime != "" {
		startTime, err = time.Parse(time.RFC3339, payload.StartTime)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_time format: %w", err)
		}
	} else {
		startTime = time.Now().Add(-24 * time.Hour)
	}

	if payload.EndTime != "" {
		endTime, err = time.Parse(time.RFC3339, payload.EndTime)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_time format: %w", err)
		}
	} else {
		endTime = time.Now()
	}

	return startTime, endTime, nil
}

func (rg *ReportGenerator) generateClassificationSummary(ctx context.Context, startTime, endTime time.Time) ([][]string, error) {
	query := `
		SELECT
			task_type,
			complexity,
			COUNT(*) as total,
			ROUND(AVG(confidence)::numeric, 3) as avg_confidence,
			ROUND(AVG((resources->>'gpu_memory_gb')::numeric), 1) as avg_gpu_gb,
			ROUND(AVG((resources->>'estimated_duration_minutes')::numeric), 1) as avg_duration_min,
			COUNT(*) FILTER (WHERE degraded) as degraded
		FROM classification_history
		WHERE created_at BETWEEN $1 AND $2
		GROUP BY task_type, complexity
		ORDER BY total DESC
	`

	rows, err := rg.db.QueryContext(ctx, query, startTime, endTime)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer closeRows(rows)

	data := [][]string{
		{"Task Type", "Complexity", "Total", "Avg Confidence", "Avg GPU (GB)", "Avg Duration (min)", "Degraded"},
	}

	for rows.Next() {
		var taskType, complexity string
		var total, degraded int
		var avgConfidence, avgGPU, avgDuration sql.NullFloat64

		if err := rows.Scan(&taskType, &complexity, &total, &avgConfidence, &avgGPU, &avgDuration, &degraded); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}

		data = append(data, []string{
			taskType,
			complexity,
			fmt.Sprintf("%d", total),
			formatFloat(avgConfidence, 3),
			formatFloat(avgGPU, 1),
			formatFloat(avgDuration, 1),
			fmt.Sprintf("%d", degraded),
		})
	}

	return data, rows.Err()
}

func (rg *ReportGenerator) generateTypeBreakdown(ctx context.Context, startTime, endTime time.Time) ([][]string, error) {
	query := `
		SELECT
			task_type,
			COUNT(*) as total,
			ROUND(100.0 * COUNT(*) / SUM(COUNT(*)) OVER (), 2) as share_pct,
			ROUND(AVG(confidence)::numeric, 3) as avg_confidence,
			MAX(created_at) as last_seen
		FROM classification_history
		WHERE created_at BETWEEN $1 AND $2
		GROUP BY task_type
		ORDER BY total DESC
	`

	rows, err := rg.db.QueryContext(ctx, query, startTime, endTime)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer closeRows(rows)

	data := [][]string{
		{"Task Type", "Total", "Share (%)", "Avg Confidence", "Last Seen"},
	}

	for rows.Next() {
		var taskType string
		var total int
		var sharePct, avgConfidence sql.NullFloat64
		var lastSeen time.Time

		if err := rows.Scan(&taskType, &total, &sharePct, &avgConfidence, &lastSeen); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}

		data = append(data, []string{
			taskType,
			fmt.Sprintf("%d", total),
			formatFloat(sharePct, 2),
			formatFloat(avgConfidence, 3),
			lastSeen.Format("2006-01-02 15:04:05"),
		})
	}

	return data, rows.Err()
}

func (rg *ReportGenerator) generateConfidenceDistribution(ctx context.Context, startTime, endTime time.Time) ([][]string, error) {
	query := `
		SELECT
			WIDTH_BUCKET(confidence, 0, 1, 10) as bucket,
			COUNT(*) as total,
			COUNT(*) FILTER (WHERE degraded) as degraded
		FROM classification_history
		WHERE created_at BETWEEN $1 AND $2
		GROUP BY WIDTH_BUCKET(confidence, 0, 1, 10)
		ORDER BY bucket
	`

	rows, err := rg.db.QueryContext(ctx, query, startTime, endTime)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer closeRows(rows)

	data := [][]string{
		{"Confidence Range", "Total", "Degraded"},
	}

	for rows.Next() {
		var bucket, total, degraded int

		if err := rows.Scan(&bucket, &total, &degraded); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}

		lower := float64(bucket-1) / 10
		upper := float64(bucket) / 10
		data = append(data, []string{
			fmt.Sprintf("%.1f-%.1f", lower, upper),
			fmt.Sprintf("%d", total),
			fmt.Sprintf("%d", degraded),
		})
	}

	return data, rows.Err()
}

func (rg *ReportGenerator) generateHourlyBreakdown(ctx context.Context, startTime, endTime time.Time) ([][]string, error) {
	query := `
		SELECT
			DATE_TRUNC('hour', created_at) as hour,
			COUNT(*) as total,
			ROUND(AVG(confidence)::numeric, 3) as avg_confidence,
			COUNT(*) FILTER (WHERE degraded) as degraded
		FROM classification_history
		WHERE created_at BETWEEN $1 AND $2
		GROUP BY DATE_TRUNC('hour', created_at)
		ORDER BY hour DESC
	`

	rows, err := rg.db.QueryContext(ctx, query, startTime, endTime)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer closeRows(rows)

	data := [][]string{
		{"Hour", "Total", "Avg Confidence", "Degraded"},
	}

	for rows.Next() {
		var hour time.Time
		var total, degraded int
		var avgConfidence sql.NullFloat64

		if err := rows.Scan(&hour, &total, &avgConfidence, &degraded); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}

		data = append(data, []string{
			hour.Format("2006-01-02 15:00"),
			fmt.Sprintf("%d", total),
			formatFloat(avgConfidence, 3),
			fmt.Sprintf("%d", degraded),
		})
	}

	return data, rows.Err()
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		log.Printf("failed to close rows: %v", err)
	}
}

func formatFloat(val sql.NullFloat64, precision int) string {
	if !val.Valid {
		return "0"
	}
	return fmt.Sprintf("%.*f", precision, val.Float64)
}

func saveReport(payload *ReportPayload, data [][]string) (string, error) {
	if err := os.MkdirAll(payload.OutputPath, 0755); err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("taskscope_%s_%s.%s", payload.ReportType, timestamp, payload.Format)
	fullPath := filepath.Join(payload.OutputPath, filename)

	switch payload.Format {
	case "csv":
		return fullPath, saveAsCSV(fullPath, data)
	case "json":
		return fullPath, saveAsJSON(fullPath, data)
	default:
		return "", fmt.Errorf("unsupported format: %s", payload.Format)
	}
}

func saveAsCSV(path string, data [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if fileErr := file.Close(); fileErr != nil {
			log.Printf("failed to close file: %v", fileErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	return writer.WriteAll(data)
}

func saveAsJSON(path string, data [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if fileErr := file.Close(); fileErr != nil {
			log.Printf("failed to close file: %v", fileErr)
		}
	}()

	if len(data) < 2 {
		return errors.New("insufficient data for JSON export")
	}

	headers := data[0]
	rows := data[1:]

	var records []map[string]string
	for _, row := range rows {
		record := make(map[string]string)
		for i, header := range headers {
			if i < len(row) {
				record[header] = row[i]
			}
		}

		records = append(records, record)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]any{
		"generated_at": time.Now().Format(time.RFC3339),
		"data":         records,
		"total_rows":   len(records),
	})
}
