// Package classifier implements a rule-based task classifier. Given a
// free-text task description and an optional numeric context, it infers the
// task's type, complexity and time sensitivity, predicts a resource
// footprint, and emits tags, recommendations and a confidence score.
// Classification is a pure function of its inputs plus frozen keyword
// tables; it performs no I/O and is safe for concurrent use.
package classifier

import "time"

type TaskType string

// Declaration order is frozen: it is the scoring iteration order, and ties
// between types depend on it.
const (
	TypeTraining      TaskType = "training"
	TypeInference     TaskType = "inference"
	TypeAnalysis      TaskType = "analysis"
	TypeOptimization  TaskType = "optimization"
	TypeEvaluation    TaskType = "evaluation"
	TypePreprocessing TaskType = "preprocessing"
	TypeDeployment    TaskType = "deployment"
	TypeMonitoring    TaskType = "monitoring"
)

var taskTypes = []TaskType{
	TypeTraining,
	TypeInference,
	TypeAnalysis,
	TypeOptimization,
	TypeEvaluation,
	TypePreprocessing,
	TypeDeployment,
	TypeMonitoring,
}

// TaskComplexity is ordered from cheapest to most expensive band; the
// ordering drives the resource multiplier table.
type TaskComplexity string

const (
	ComplexitySimple   TaskComplexity = "simple"
	ComplexityModerate TaskComplexity = "moderate"
	ComplexityComplex  TaskComplexity = "complex"
	ComplexityAdvanced TaskComplexity = "advanced"
)

var complexities = []TaskComplexity{
	ComplexitySimple,
	ComplexityModerate,
	ComplexityComplex,
	ComplexityAdvanced,
}

// TimeSensitivity describes the acceptable latency class of a task. It only
// drives recommendation text and queue priority, never scheduling itself.
type TimeSensitivity string

const (
	SensitivityRealTime    TimeSensitivity = "real_time"
	SensitivityInteractive TimeSensitivity = "interactive"
	SensitivityBatch       TimeSensitivity = "batch"
	SensitivityOffline     TimeSensitivity = "offline"
)

var sensitivities = []TimeSensitivity{
	SensitivityRealTime,
	SensitivityInteractive,
	SensitivityBatch,
	SensitivityOffline,
}

// ResourceRequirement is a structured estimate of the compute a task needs.
// Every field is floored after all multiplier math; callers never observe
// values below the documented minimums.
type ResourceRequirement struct {
	CPUCores                 int     `json:"cpu_cores"`
	GPUMemoryGB              float64 `json:"gpu_memory_gb"`
	SystemMemoryGB           float64 `json:"system_memory_gb"`
	StorageGB                float64 `json:"storage_gb"`
	NetworkBandwidthMbps     float64 `json:"network_bandwidth_mbps"`
	EstimatedDurationMinutes float64 `json:"estimated_duration_minutes"`
}

// AnalysisContext carries the optional numeric hints a caller may attach to
// a description. Nil fields mean "not provided"; negative values are
// ignored. Unknown JSON keys are dropped on decode.
type AnalysisContext struct {
	ModelSize     *int64   `json:"model_size,omitempty"`
	DatasetSize   *int64   `json:"dataset_size,omitempty"`
	Distributed   *bool    `json:"distributed,omitempty"`
	UserFacing    *bool    `json:"user_facing,omitempty"`
	DeadlineHours *float64 `json:"deadline_hours,omitempty"`
	BatchSize     *int     `json:"batch_size,omitempty"`
}

// TaskClassification is the aggregate result of one analysis. It is a plain
// immutable snapshot: constructed once, never mutated, not persisted by the
// classifier itself.
//
// Degraded marks a fallback result substituted after an internal failure,
// so batch callers can tell a safe default from a confident classification
// without inspecting the confidence score.
type TaskClassification struct {
	TaskType             TaskType            `json:"task_type"`
	Complexity           TaskComplexity      `json:"complexity"`
	TimeSensitivity      TimeSensitivity     `json:"time_sensitivity"`
	ResourceRequirements ResourceRequirement `json:"resource_requirements"`
	ConfidenceScore      float64             `json:"confidence_score"`
	Tags                 []string            `json:"tags"`
	Recommendations      []string            `json:"recommendations"`
	Degraded             bool                `json:"degraded,omitempty"`
	DegradedReason       string              `json:"degraded_reason,omitempty"`
}

// Statistics aggregates a list of classifications. The zero value (with
// empty maps) is returned for empty input.
type Statistics struct {
	Total          int                 `json:"total"`
	ByType         map[string]int      `json:"by_type"`
	ByComplexity   map[string]int      `json:"by_complexity"`
	MeanResources  ResourceRequirement `json:"mean_resources"`
	MeanConfidence float64             `json:"mean_confidence"`
	GeneratedAt    string              `json:"generated_at"`
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
