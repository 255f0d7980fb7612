package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_DistributedTraining(t *testing.T) {
	a := NewAnalyzer()

	c := a.Analyze("train a large language model with distributed GPU cluster", nil)

	assert.Equal(t, TypeTraining, c.TaskType)
	assert.Contains(t, []TaskComplexity{ComplexityComplex, ComplexityAdvanced}, c.Complexity)
	assert.Greater(t, c.ResourceRequirements.GPUMemoryGB, 8.0)
	assert.False(t, c.Degraded)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	a := NewAnalyzer()

	c := a.Analyze("", nil)

	assert.Equal(t, TypeAnalysis, c.TaskType)
	assert.Equal(t, ComplexitySimple, c.Complexity)
	assert.Equal(t, SensitivityBatch, c.TimeSensitivity)
	assert.InDelta(t, 0.4, c.ConfidenceScore, 0.001)
}

func TestAnalyze_DeadlineDominates(t *testing.T) {
	a := NewAnalyzer()

	deadline := 0.5
	c := a.Analyze("quick prediction", &AnalysisContext{DeadlineHours: &deadline})

	assert.Equal(t, SensitivityRealTime, c.TimeSensitivity)
}

func TestAnalyze_ModelSizeRaisesGPUEstimate(t *testing.T) {
	a := NewAnalyzer()

	size := int64(2_000_000_000)
	c := a.Analyze("basic inference task", &AnalysisContext{ModelSize: &size})

	assert.Equal(t, TypeInference, c.TaskType)
	assert.GreaterOrEqual(t, c.ResourceRequirements.GPUMemoryGB, 8.0)
}

func TestAnalyze_Totality(t *testing.T) {
	a := NewAnalyzer()

	inputs := []string{
		"",
		"!!!???...",
		"🚀🔥💯",
		strings.Repeat("x", 10_000),
		"訓練大型模型並部署到生產環境",
		"mixed 中英 input with punctuation!!! and\tcontrol\ncharacters",
	}

	for _, input := range inputs {
		c := a.Analyze(input, nil)

		assert.GreaterOrEqual(t, c.ConfidenceScore, 0.0)
		assert.LessOrEqual(t, c.ConfidenceScore, 1.0)
		assert.GreaterOrEqual(t, c.ResourceRequirements.CPUCores, 1)
		assert.GreaterOrEqual(t, c.ResourceRequirements.SystemMemoryGB, 2.0)
		assert.GreaterOrEqual(t, c.ResourceRequirements.StorageGB, 5.0)
		assert.GreaterOrEqual(t, c.ResourceRequirements.EstimatedDurationMinutes, 1.0)
		assert.NotEmpty(t, c.TaskType)
	}
}

func TestAnalyze_Idempotent(t *testing.T) {
	a := NewAnalyzer()

	deadline := 2.0
	ctx := &AnalysisContext{DeadlineHours: &deadline}

	first := a.Analyze("optimize the recommendation pipeline", ctx)
	second := a.Analyze("optimize the recommendation pipeline", ctx)

	assert.Equal(t, first, second)
}

func TestAnalyze_TagsIncludeTypeAndComplexity(t *testing.T) {
	a := NewAnalyzer()

	c := a.Analyze("train a deep learning model on gpu for stock trading", nil)

	assert.Contains(t, c.Tags, string(c.TaskType))
	assert.Contains(t, c.Tags, string(c.Complexity))
	assert.Contains(t, c.Tags, "deep_learning")
	assert.Contains(t, c.Tags, "gpu_computing")
	assert.Contains(t, c.Tags, "financial")
}

func TestAnalyze_RecommendationsCapped(t *testing.T) {
	a := NewAnalyzer()

	// Pile on every rule trigger: training, advanced, big GPU/memory, realtime.
	size := int64(70_000_000_000)
	batch := 64
	c := a.Analyze(
		"urgent realtime train a massive large language model with distributed multi gpu cluster pipeline orchestration on kubernetes",
		&AnalysisContext{ModelSize: &size, BatchSize: &batch},
	)

	assert.NotEmpty(t, c.Recommendations)
	assert.LessOrEqual(t, len(c.Recommendations), 10)
}

func TestAnalyzeBatch_LengthInvariant(t *testing.T) {
	a := NewAnalyzer()

	items := []BatchItem{
		{Description: "train model"},
		{Description: ""},
		{Description: "!!!"},
	}

	results := a.AnalyzeBatch(items)

	require.Len(t, results, len(items))
	assert.Equal(t, TypeTraining, results[0].TaskType)
	assert.Equal(t, TypeAnalysis, results[1].TaskType)
}

func TestAnalyzeBatch_Empty(t *testing.T) {
	a := NewAnalyzer()

	assert.Empty(t, a.AnalyzeBatch(nil))
}

func TestFallback(t *testing.T) {
	c := Fallback("boom")

	assert.Equal(t, TypeAnalysis, c.TaskType)
	assert.Equal(t, ComplexityModerate, c.Complexity)
	assert.Equal(t, SensitivityBatch, c.TimeSensitivity)
	assert.Equal(t, 0.1, c.ConfidenceScore)
	assert.Equal(t, []string{"unknown"}, c.Tags)
	assert.True(t, c.Degraded)
	assert.Equal(t, "boom", c.DegradedReason)
}

func TestConfidenceBounds(t *testing.T) {
	v := newVocabulary()

	texts := []string{
		"",
		"train",
		"train training finetune learn epoch gradient 訓練 微調 學習 backprop fit",
		strings.Repeat("analyze evaluate deploy monitor train ", 20),
	}

	for _, text := range texts {
		for _, tt := range taskTypes {
			score := v.calculateConfidence(preprocess(text), tt)

			assert.GreaterOrEqual(t, score, 0.0, "text %q type %s", text, tt)
			assert.LessOrEqual(t, score, 1.0, "text %q type %s", text, tt)
		}
	}
}
