package scoring

import (
	"math"

	"folio-api/pkg/models"
)

// CalculateProjectedScore sums the impact of every accepted change on top of
// the base score and caps the result at the effective ceiling. Changes the
// user edited contribute their edit-aware impact; unedited accepted changes
// contribute their nominal impact points. The ceiling only caps downward, it
// never lifts a score that is already below it.
func CalculateProjectedScore(
	baseScore float64,
	changes []models.ProposedChange,
	acceptedIndices []int,
	editedTexts map[int]string,
	ceiling *models.ScoreCeiling,
) float64 {
	accepted := make(map[int]bool, len(acceptedIndices))
	for _, i := range acceptedIndices {
		accepted[i] = true
	}

	score := baseScore
	for i, change := range changes {
		if !accepted[i] {
			continue
		}
		if edited, ok := editedTexts[i]; ok {
			score += CalculateEditedImpact(change, edited)
		} else {
			score += change.ImpactPoints
		}
	}

	cap := 100.0
	if ceiling != nil && ceiling.Maximum < cap {
		cap = ceiling.Maximum
	}

	return math.Min(cap, math.Round(score))
}
