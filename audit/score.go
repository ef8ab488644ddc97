package audit

import "math"

// Global score weights. Non-negative and applied to clamped sub-scores, so
// raising any sub-score can never lower the global score.
const (
	weightTechnical = 0.40
	weightStructure = 0.35
	weightMessage   = 0.25
)

// globalScore combines the technical average with the structure and message
// scores into a single 0-100 value.
func globalScore(tech TechnicalScores, structureScore, messageScore int) int {
	technicalAvg := float64(tech.Performance+tech.SEO+tech.Accessibility) / 3.0
	score := weightTechnical*technicalAvg +
		weightStructure*float64(structureScore) +
		weightMessage*float64(messageScore)
	return clampScore(int(math.Round(score)))
}

// tierFor maps a global score to its qualitative badge. Boundaries are
// inclusive on the lower bound of each tier.
func tierFor(score int) string {
	switch {
	case score >= 80:
		return "excellent"
	case score >= 60:
		return "good"
	case score >= 40:
		return "average"
	default:
		return "poor"
	}
}
