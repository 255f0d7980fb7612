package handlers

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskscope/taskscope/internal/job"
)

func TestParseReportPayload(t *testing.T) {
	tests := []struct {
		name        string
		payload     map[string]any
		expected    *ReportPayload
		expectError bool
	}{
		{
			name: "valid payload with all fields",
			payload: map[string]any{
				"report_type": "classification_summary",
				"start_time":  "2026-01-01T00:00:00Z",
				"end_time":    "2026-01-02T00:00:00Z",
				"format":      "csv",
				"output_path": "/tmp/reports",
			},
			expected: &ReportPayload{
				ReportType: "classification_summary",
				StartTime:  "2026-01-01T00:00:00Z",
				EndTime:    "2026-01-02T00:00:00Z",
				Format:     "csv",
				OutputPath: "/tmp/reports",
			},
			expectError: false,
		},
		{
			name: "minimal valid payload with defaults",
			payload: map[string]any{
				"report_type": "type_breakdown",
			},
			expected: &ReportPayload{
				ReportType: "type_breakdown",
				Format:     "csv",
				OutputPath: "./reports",
			},
			expectError: false,
		},
		{
			name:        "missing report_type",
			payload:     map[string]any{},
			expectError: true,
		},
		{
			name: "json format",
			payload: map[string]any{
				"report_type": "confidence_distribution",
				"format":      "json",
			},
			expected: &ReportPayload{
				ReportType: "confidence_distribution",
				Format:     "json",
				OutputPath: "./reports",
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseReportPayload(tt.payload)

			if tt.expectError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected.ReportType, result.ReportType)
			assert.Equal(t, tt.expected.Format, result.Format)
			assert.Equal(t, tt.expected.OutputPath, result.OutputPath)
		})
	}
}

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		name        string
		payload     *ReportPayload
		expectError bool
	}{
		{
			name: "valid time range",
			payload: &ReportPayload{
				StartTime: "2026-01-01T00:00:00Z",
				EndTime:   "2026-01-02T00:00:00Z",
			},
			expectError: false,
		},
		{
			name:        "empty times use defaults",
			payload:     &ReportPayload{},
			expectError: false,
		},
		{
			name: "invalid start time format",
			payload: &ReportPayload{
				StartTime: "invalid-date",
			},
			expectError: true,
		},
		{
			name: "invalid end time format",
			payload: &ReportPayload{
				StartTime: "2026-01-01T00:00:00Z",
				EndTime:   "not-a-date",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := parseTimeRange(tt.payload)

			if tt.expectError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.False(t, start.IsZero())
			assert.False(t, end.IsZero())
			assert.True(t, start.Before(end) || start.Equal(end))
		})
	}
}

func TestGenerateClassificationSummary(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rg := NewReportGenerator(db)

	startTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	endTime := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"task_type", "complexity", "total", "avg_confidence", "avg_gpu_gb", "avg_duration_min", "degraded",
	}).
		AddRow("training", "advanced", 40, 0.85, 32.0, 240.0, 0).
		AddRow("analysis", "moderate", 25, 0.62, 0.0, 30.0, 2)

	mock.ExpectQuery(`SELECT\s+task_type,.*FROM classification_history.*WHERE created_at BETWEEN.*GROUP BY task_type, complexity`).
		WithArgs(startTime, endTime).
		WillReturnRows(rows)

	data, err := rg.generateClassificationSummary(context.Background(), startTime, endTime)

	require.NoError(t, err)
	assert.Len(t, data, 3) // header + 2 rows
	assert.Equal(t, "Task Type", data[0][0])
	assert.Equal(t, "training", data[1][0])
	assert.Equal(t, "advanced", data[1][1])
	assert.Equal(t, "40", data[1][2])
	assert.Equal(t, "0.850", data[1][3])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateTypeBreakdown(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rg := NewReportGenerator(db)

	startTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	endTime := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	lastSeen := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{
		"task_type", "total", "share_pct", "avg_confidence", "last_seen",
	}).
		AddRow("inference", 60, 60.0, 0.74, lastSeen).
		AddRow("training", 40, 40.0, 0.81, lastSeen)

	mock.ExpectQuery(`SELECT\s+task_type,.*FROM classification_history.*GROUP BY task_type`).
		WithArgs(startTime, endTime).
		WillReturnRows(rows)

	data, err := rg.generateTypeBreakdown(context.Background(), startTime, endTime)

	require.NoError(t, err)
	assert.Len(t, data, 3)
	assert.Equal(t, "Task Type", data[0][0])
	assert.Equal(t, "inference", data[1][0])
	assert.Equal(t, "60", data[1][1])
	assert.Equal(t, "60.00", data[1][2])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateConfidenceDistribution(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rg := NewReportGenerator(db)

	startTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	endTime := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"bucket", "total", "degraded"}).
		AddRow(2, 5, 5).
		AddRow(7, 30, 0)

	mock.ExpectQuery(`SELECT\s+WIDTH_BUCKET\(confidence, 0, 1, 10\).*FROM classification_history`).
		WithArgs(startTime, endTime).
		WillReturnRows(rows)

	data, err := rg.generateConfidenceDistribution(context.Background(), startTime, endTime)

	require.NoError(t, err)
	assert.Len(t, data, 3)
	assert.Equal(t, "Confidence Range", data[0][0])
	assert.Equal(t, "0.1-0.2", data[1][0])
	assert.Equal(t, "0.6-0.7", data[2][0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateHourlyBreakdown(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rg := NewReportGenerator(db)

	startTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	endTime := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	hour := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"hour", "total", "avg_confidence", "degraded"}).
		AddRow(hour, 50, 0.7, 1).
		AddRow(hour.Add(-time.Hour), 45, 0.68, 0)

	mock.ExpectQuery(`SELECT\s+DATE_TRUNC\('hour', created_at\).*FROM classification_history`).
		WithArgs(startTime, endTime).
		WillReturnRows(rows)

	data, err := rg.generateHourlyBreakdown(context.Background(), startTime, endTime)

	require.NoError(t, err)
	assert.Len(t, data, 3)
	assert.Equal(t, "Hour", data[0][0])
	assert.Equal(t, "2026-01-01 12:00", data[1][0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name      string
		val       sql.NullFloat64
		precision int
		expected  string
	}{
		{
			name:      "valid float with 2 precision",
			val:       sql.NullFloat64{Float64: 123.456, Valid: true},
			precision: 2,
			expected:  "123.46",
		},
		{
			name:      "valid float with 0 precision",
			val:       sql.NullFloat64{Float64: 123.456, Valid: true},
			precision: 0,
			expected:  "123",
		},
		{
			name:      "null float",
			val:       sql.NullFloat64{Valid: false},
			precision: 2,
			expected:  "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatFloat(tt.val, tt.precision)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSaveAsCSV(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.csv")

	data := [][]string{
		{"Header1", "Header2", "Header3"},
		{"Value1", "Value2", "Value3"},
		{"Value4", "Value5", "Value6"},
	}

	err := saveAsCSV(path, data)
	require.NoError(t, err)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, data, records)
}

func TestSaveAsJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.json")

	data := [][]string{
		{"Type", "Total"},
		{"training", "40"},
		{"analysis", "25"},
	}

	err := saveAsJSON(path, data)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var result map[string]any
	err = json.Unmarshal(content, &result)
	require.NoError(t, err)

	assert.Contains(t, result, "generated_at")
	assert.Contains(t, result, "data")
	assert.Contains(t, result, "total_rows")
	assert.Equal(t, float64(2), result["total_rows"])

	records := result["data"].([]any)
	assert.Len(t, records, 2)
}

func TestSaveAsJSON_InsufficientData(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "test.json")

	data := [][]string{
		{"Header"},
	}

	err := saveAsJSON(path, data)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient data")
}

func TestSaveReport(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name        string
		payload     *ReportPayload
		data        [][]string
		expectError bool
	}{
		{
			name: "save as CSV",
			payload: &ReportPayload{
				ReportType: "test_report",
				Format:     "csv",
				OutputPath: tmpDir,
			},
			data: [][]string{
				{"Col1", "Col2"},
				{"Val1", "Val2"},
			},
			expectError: false,
		},
		{
			name: "save as JSON",
			payload: &ReportPayload{
				ReportType: "test_report",
				Format:     "json",
				OutputPath: tmpDir,
			},
			data: [][]string{
				{"Col1", "Col2"},
				{"Val1", "Val2"},
			},
			expectError: false,
		},
		{
			name: "unsupported format",
			payload: &ReportPayload{
				ReportType: "test_report",
				Format:     "xml",
				OutputPath: tmpDir,
			},
			data: [][]string{
				{"Col1", "Col2"},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := saveReport(tt.payload, tt.data)

			if tt.expectError {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Contains(t, path, "taskscope_test_report")
			assert.Contains(t, path, tt.payload.Format)

			_, err = os.Stat(path)
			assert.NoError(t, err)
		})
	}
}

func TestReportHandler(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rg := NewReportGenerator(db)
	tmpDir := t.TempDir()

	t.Run("successful classification_summary report", func(t *testing.T) {
		j := &job.Job{
			ID:   "test-job-1",
			Type: job.TypeReport,
			Payload: map[string]any{
				"report_type": "classification_summary",
				"start_time":  "2026-01-01T00:00:00Z",
				"end_time":    "2026-01-02T00:00:00Z",
				"format":      "csv",
				"output_path": tmpDir,
			},
		}

		rows := sqlmock.NewRows([]string{
			"task_type", "complexity", "total", "avg_confidence", "avg_gpu_gb", "avg_duration_min", "degraded",
		}).AddRow("training", "complex", 10, 0.8, 16.0, 120.0, 0)

		mock.ExpectQuery(`SELECT\s+task_type,.*FROM classification_history`).WillReturnRows(rows)

		err := rg.Handle(context.Background(), j)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid payload", func(t *testing.T) {
		j := &job.Job{
			ID:      "test-job-2",
			Type:    job.TypeReport,
			Payload: map[string]any{},
		}

		err := rg.Handle(context.Background(), j)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid payload")
	})

	t.Run("unsupported report type", func(t *testing.T) {
		j := &job.Job{
			ID:   "test-job-3",
			Type: job.TypeReport,
			Payload: map[string]any{
				"report_type": "unsupported_type",
				"output_path": tmpDir,
			},
		}

		err := rg.Handle(context.Background(), j)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported report type")
	})
}

func TestNewReportGenerator(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	rg := NewReportGenerator(db)
	assert.NotNil(t, rg)
	assert.Equal(t, db, rg.db)
}
