package classifier

import (
	"strings"
	"unicode/utf8"
)

// identifyTaskType scores the preprocessed text against every task type's
// keyword list. A keyword found as a whole token scores 2, a bare substring
// hit scores 1. The highest-scoring type wins; if the top score is shared
// by more than one type (or everything scores zero), the result is
// TypeAnalysis.
func (v *vocabulary) identifyTaskType(text string) TaskType {
	best := TypeAnalysis
	bestScore := 0
	tied := false

	for _, tt := range taskTypes {
		score := 0
		for _, kw := range v.types[tt] {
			if containsToken(text, kw) {
				score += 2
			} else if strings.Contains(text, kw) {
				score++
			}
		}

		if score > bestScore {
			best = tt
			bestScore = score
			tied = false
		} else if score == bestScore && score > 0 {
			tied = true
		}
	}

	if bestScore == 0 || tied {
		return TypeAnalysis
	}

	return best
}

// assessComplexity combines band keywords, a text length heuristic and the
// optional numeric context into a discrete complexity level.
//
// Band weights: simple -1, moderate 0, complex +2, advanced +3, applied
// once per matching keyword (substring search, no whole-token bonus).
// Length is counted in runes so Chinese text is not over-weighted.
func (v *vocabulary) assessComplexity(text string, ctx *AnalysisContext) TaskComplexity {
	weights := map[TaskComplexity]int{
		ComplexitySimple:   -1,
		ComplexityModerate: 0,
		ComplexityComplex:  2,
		ComplexityAdvanced: 3,
	}

	score := 0
	for _, level := range complexities {
		for _, kw := range v.complexity[level] {
			if strings.Contains(text, kw) {
				score += weights[level]
			}
		}
	}

	length := utf8.RuneCountInString(text)
	if length > 200 {
		score++
	}
	if length < 50 {
		score--
	}

	if ctx != nil {
		if ctx.ModelSize != nil && *ctx.ModelSize > 1_000_000_000 {
			score += 2
		}
		if ctx.DatasetSize != nil && *ctx.DatasetSize > 1_000_000 {
			score++
		}
		if ctx.Distributed != nil && *ctx.Distributed {
			score += 2
		}
	}

	for _, kw := range v.advancedTech {
		if strings.Contains(text, kw) {
			score++
		}
	}

	switch {
	case score <= -1:
		return ComplexitySimple
	case score <= 1:
		return ComplexityModerate
	case score <= 3:
		return ComplexityComplex
	default:
		return ComplexityAdvanced
	}
}

// analyzeTimeSensitivity counts keyword hits per sensitivity band and folds
// in the context: a user-facing task boosts the interactive band, a
// deadline under an hour dominates everything via the real-time band, and a
// same-day deadline nudges interactive. All-zero defaults to batch; ties go
// to the first highest band in declaration order.
func (v *vocabulary) analyzeTimeSensitivity(text string, ctx *AnalysisContext) TimeSensitivity {
	scores := make(map[TimeSensitivity]int, len(sensitivities))
	for _, band := range sensitivities {
		for _, kw := range v.sensitivity[band] {
			if strings.Contains(text, kw) {
				scores[band]++
			}
		}
	}

	if ctx != nil {
		if ctx.UserFacing != nil && *ctx.UserFacing {
			scores[SensitivityInteractive] += 2
		}
		if ctx.DeadlineHours != nil {
			switch d := *ctx.DeadlineHours; {
			case d < 0:
				// ignored, treated as absent
			case d < 1:
				scores[SensitivityRealTime] += 3
			case d < 24:
				scores[SensitivityInteractive]++
			}
		}
	}

	best := SensitivityBatch
	bestScore := 0
	for _, band := range sensitivities {
		if scores[band] > bestScore {
			best = band
			bestScore = scores[band]
		}
	}

	return best
}
