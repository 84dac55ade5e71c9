package agents

import (
	"math"

	"github.com/kilimobot/kilimobot/internal/analysis"
)

// Confidence computes the deterministic confidence score for a response
// from retrieval density and query shape. The baseline is non-decreasing in
// the passage count; a simple well-grounded query earns a bonus, a complex
// poorly-grounded one a penalty, and every matched domain keyword adds a
// small increment.
func Confidence(passages int, complexity analysis.Complexity, keywords int) float64 {
	score := 0.3
	switch {
	case passages >= 5:
		score = 0.9
	case passages >= 3:
		score = 0.8
	case passages >= 1:
		score = 0.5
	}

	if complexity == analysis.ComplexitySimple && passages > 0 {
		score = math.Min(score+0.1, 0.95)
	}
	if complexity == analysis.ComplexityComplex && passages < 3 {
		score = math.Max(score-0.2, 0.3)
	}

	score = math.Min(score+0.05*float64(keywords), 0.95)

	return math.Round(score*100) / 100
}
