package classifier

import (
	"strings"
	"unicode/utf8"
)

// calculateConfidence produces a heuristic score in [0,1]: 0.5 base, small
// adjustments for very long or very short text, up to +0.3 for keyword
// density across every type table, and up to +0.2 for matches against the
// winning type's own keywords. The final clamp is a hard invariant.
func (v *vocabulary) calculateConfidence(text string, tt TaskType) float64 {
	score := 0.5

	length := utf8.RuneCountInString(text)
	if length > 100 {
		score += 0.1
	}
	if length < 20 {
		score -= 0.1
	}

	total := 0
	matched := 0
	for _, keywords := range v.types {
		for _, kw := range keywords {
			total++
			if strings.Contains(text, kw) {
				matched++
			}
		}
	}
	if total > 0 {
		score += 0.3 * float64(matched) / float64(total)
	}

	typeMatches := 0
	for _, kw := range v.types[tt] {
		if strings.Contains(text, kw) {
			typeMatches++
		}
	}
	typeBonus := float64(typeMatches) * 0.1
	if typeBonus > 0.2 {
		typeBonus = 0.2
	}
	score += typeBonus

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return score
}
