package scoring

import (
	"math"

	"folio-api/pkg/models"
)

// NormalizeImpactPoints rescales the impact points of every proposed change
// so that accepting all of them cannot push the score past the effective
// ceiling. The input is never mutated; the returned result holds fresh
// copies of the change slice. When the raw impacts already fit inside the
// remaining budget the copy is returned unchanged.
func NormalizeImpactPoints(result models.ResumeAnalysisResult) models.ResumeAnalysisResult {
	out := cloneResult(result)

	ceiling := 100.0
	if result.ScoreCeiling != nil {
		ceiling = result.ScoreCeiling.Maximum
	}
	cap := math.Min(100, ceiling)
	budget := math.Max(0, cap-result.CurrentScore.Total)

	var rawSum float64
	for _, change := range result.ProposedChanges {
		rawSum += change.ImpactPoints
	}

	if rawSum <= budget {
		return out
	}

	// budget == 0 collapses every impact to zero; rawSum > budget >= 0
	// guarantees rawSum > 0 here, so the factor is well defined.
	factor := budget / rawSum

	scaled := make([]float64, len(out.ProposedChanges))
	for i, change := range out.ProposedChanges {
		scaled[i] = change.ImpactPoints * factor
	}
	clipRoundedSum(scaled, budget)

	for i := range out.ProposedChanges {
		change := &out.ProposedChanges[i]
		applied := 1.0
		if change.ImpactPoints > 0 {
			applied = scaled[i] / change.ImpactPoints
		}
		change.ImpactPoints = scaled[i]
		if change.ImpactPerKeyword != nil {
			perKeyword := *change.ImpactPerKeyword * applied
			change.ImpactPerKeyword = &perKeyword
		}
	}

	return out
}

// clipRoundedSum shaves values until the sum of their rounded forms fits the
// budget. Proportional scaling alone is not enough: each downstream round
// can add up to half a point, and the accumulated drift may overshoot.
func clipRoundedSum(values []float64, budget float64) {
	for {
		var roundedSum float64
		for _, v := range values {
			roundedSum += math.Round(v)
		}
		excess := roundedSum - budget
		if excess <= 0 {
			return
		}

		// Take the overshoot from the largest value; it absorbs the
		// clip with the smallest relative loss.
		maxIdx := 0
		for i, v := range values {
			if v > values[maxIdx] {
				maxIdx = i
			}
		}
		if values[maxIdx] <= 0 {
			return
		}
		values[maxIdx] = math.Max(0, values[maxIdx]-excess)
	}
}

// cloneResult deep-copies the analysis so normalization cannot alias the
// caller's slices or optional pointers.
func cloneResult(result models.ResumeAnalysisResult) models.ResumeAnalysisResult {
	out := result

	out.ProposedChanges = make([]models.ProposedChange, len(result.ProposedChanges))
	copy(out.ProposedChanges, result.ProposedChanges)
	for i := range out.ProposedChanges {
		if src := result.ProposedChanges[i].ImpactPerKeyword; src != nil {
			v := *src
			out.ProposedChanges[i].ImpactPerKeyword = &v
		}
		if src := result.ProposedChanges[i].KeywordsAdded; src != nil {
			out.ProposedChanges[i].KeywordsAdded = append([]string(nil), src...)
		}
	}

	if result.ScoreCeiling != nil {
		ceiling := *result.ScoreCeiling
		ceiling.Blockers = append([]string(nil), result.ScoreCeiling.Blockers...)
		out.ScoreCeiling = &ceiling
	}

	if result.CurrentScore.Categories != nil {
		out.CurrentScore.Categories = copyCategories(result.CurrentScore.Categories)
	}
	if result.OptimizedScore.Categories != nil {
		out.OptimizedScore.Categories = copyCategories(result.OptimizedScore.Categories)
	}

	return out
}

func copyCategories(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
