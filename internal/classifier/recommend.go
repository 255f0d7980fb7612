package classifier

import (
	"sort"
	"strings"
)

// maxRecommendations caps the advice list on a classification.
const maxRecommendations = 10

// generateTags returns the deduplicated tag set for a classification: the
// type and complexity values plus any technology tags whose keyword group
// matches the text. Order is not part of the contract; tags are sorted only
// to keep output stable for humans reading JSON.
func (v *vocabulary) generateTags(text string, tt TaskType, complexity TaskComplexity) []string {
	set := map[string]struct{}{
		string(tt):         {},
		string(complexity): {},
	}

	for tag, keywords := range v.techTags {
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				set[tag] = struct{}{}
				break
			}
		}
	}

	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return tags
}

// generateRecommendations appends advice in a fixed rule order: task-type
// advice, complexity advice, GPU and system memory thresholds, then time
// sensitivity. Duplicate strings are acceptable; the list is truncated at
// maxRecommendations.
func generateRecommendations(tt TaskType, complexity TaskComplexity, sensitivity TimeSensitivity, req ResourceRequirement) []string {
	var recs []string

	switch tt {
	case TypeTraining:
		recs = append(recs,
			"enable checkpointing so long training runs can resume after interruption",
			"use mixed precision to cut GPU memory usage and speed up training")
	case TypeInference:
		recs = append(recs,
			"batch incoming requests to improve GPU utilization",
			"consider quantizing the model to reduce serving latency")
	case TypeAnalysis:
		recs = append(recs, "sample the dataset first to validate the approach before a full run")
	case TypeOptimization:
		recs = append(recs, "define a search budget up front; hyperparameter sweeps grow unbounded otherwise")
	case TypeEvaluation:
		recs = append(recs, "pin the evaluation dataset version so results stay comparable across runs")
	case TypePreprocessing:
		recs = append(recs, "make preprocessing idempotent so partial failures can be re-run safely")
	case TypeDeployment:
		recs = append(recs, "roll out gradually and keep the previous version ready for rollback")
	case TypeMonitoring:
		recs = append(recs, "alert on trends rather than single data points to reduce noise")
	}

	switch complexity {
	case ComplexityComplex:
		recs = append(recs, "break the task into stages with intermediate artifacts")
	case ComplexityAdvanced:
		recs = append(recs,
			"plan for distributed execution; a single node is unlikely to be sufficient",
			"budget for multiple attempts; advanced tasks rarely succeed on the first run")
	}

	if req.GPUMemoryGB > 16 {
		recs = append(recs, "estimated GPU memory exceeds a single consumer card; use an A100-class GPU or shard the model")
	}
	if req.SystemMemoryGB > 32 {
		recs = append(recs, "high memory estimate; prefer streaming the data over loading it all at once")
	}

	switch sensitivity {
	case SensitivityRealTime:
		recs = append(recs, "pre-warm resources and keep the model loaded; cold starts will blow the latency budget")
	case SensitivityInteractive:
		recs = append(recs, "target sub-second response times; precompute what you can")
	case SensitivityOffline:
		recs = append(recs, "schedule during off-peak hours to use spare capacity")
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}

	return recs
}
