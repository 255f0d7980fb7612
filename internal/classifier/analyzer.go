package classifier

import "log"

// Analyzer classifies free-text task descriptions. It holds the frozen
// keyword tables; a single Analyzer is safe for concurrent use and should
// be shared for the life of the process.
type Analyzer struct {
	vocab *vocabulary
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{vocab: newVocabulary()}
}

// BatchItem is one entry of a batch analysis request.
type BatchItem struct {
	Description string           `json:"description"`
	Context     *AnalysisContext `json:"context,omitempty"`
}

// Analyze classifies a single description. It is total: any string,
// including empty or punctuation-only input, yields a valid classification,
// and an internal failure is replaced by Fallback rather than propagated.
func (a *Analyzer) Analyze(description string, ctx *AnalysisContext) (result TaskClassification) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("analysis panicked, substituting fallback: %v", r)
			result = Fallback("internal analysis failure")
		}
	}()

	text := preprocess(description)

	taskType := a.vocab.identifyTaskType(text)
	complexity := a.vocab.assessComplexity(text, ctx)
	sensitivity := a.vocab.analyzeTimeSensitivity(text, ctx)
	resources := a.vocab.predictResources(text, taskType, complexity, ctx)

	return TaskClassification{
		TaskType:             taskType,
		Complexity:           complexity,
		TimeSensitivity:      sensitivity,
		ResourceRequirements: resources,
		ConfidenceScore:      a.vocab.calculateConfidence(text, taskType),
		Tags:                 a.vocab.generateTags(text, taskType, complexity),
		Recommendations:      generateRecommendations(taskType, complexity, sensitivity, resources),
	}
}

// AnalyzeBatch classifies items sequentially. The output always has the
// same length and order as the input; a failing item is replaced by the
// fallback classification instead of aborting the batch.
func (a *Analyzer) AnalyzeBatch(items []BatchItem) []TaskClassification {
	results := make([]TaskClassification, 0, len(items))
	for _, item := range items {
		results = append(results, a.Analyze(item.Description, item.Context))
	}

	return results
}

// Fallback is the safe default substituted when analysis of an item fails:
// a moderate batch analysis task with default resources and rock-bottom
// confidence, marked Degraded so callers can tell it apart from a real
// classification.
func Fallback(reason string) TaskClassification {
	resources := baseRequirement(TypeAnalysis)

	return TaskClassification{
		TaskType:             TypeAnalysis,
		Complexity:           ComplexityModerate,
		TimeSensitivity:      SensitivityBatch,
		ResourceRequirements: resources,
		ConfidenceScore:      0.1,
		Tags:                 []string{"unknown"},
		Recommendations:      nil,
		Degraded:             true,
		DegradedReason:       reason,
	}
}
