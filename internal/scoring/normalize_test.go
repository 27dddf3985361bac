package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-api/pkg/models"
)

func analysisWith(current float64, ceiling *models.ScoreCeiling, impacts ...float64) models.ResumeAnalysisResult {
	changes := make([]models.ProposedChange, len(impacts))
	for i, p := range impacts {
		changes[i] = models.ProposedChange{
			Section:      "summary",
			ImpactPoints: p,
		}
	}
	return models.ResumeAnalysisResult{
		CurrentScore:    models.ScoreBreakdown{Total: current},
		OptimizedScore:  models.ScoreBreakdown{Total: math.Min(100, current+sum(impacts))},
		ProposedChanges: changes,
		ScoreCeiling:    ceiling,
	}
}

func sum(vals []float64) float64 {
	var s float64
	for _, v := range vals {
		s += v
	}
	return s
}

func TestNormalizeImpactPoints_NoOpUnderBudget(t *testing.T) {
	in := analysisWith(60, nil, 10, 10, 15)

	out := NormalizeImpactPoints(in)

	require.Len(t, out.ProposedChanges, 3)
	for i, change := range out.ProposedChanges {
		assert.Equal(t, in.ProposedChanges[i].ImpactPoints, change.ImpactPoints,
			"raw sum 35 fits budget 40, impacts must pass through unchanged")
	}
}

func TestNormalizeImpactPoints_ScalesProportionallyOverBudget(t *testing.T) {
	// current 65, ceiling 89 leaves a budget of 24 for 35 raw points
	in := analysisWith(65, &models.ScoreCeiling{Maximum: 89}, 10, 10, 15)

	out := NormalizeImpactPoints(in)

	var total float64
	for i, change := range out.ProposedChanges {
		assert.Less(t, change.ImpactPoints, in.ProposedChanges[i].ImpactPoints,
			"every impact must shrink when scaled down")
		total += change.ImpactPoints
	}
	assert.InDelta(t, 24, total, 0.001, "scaled impacts must sum to the budget")

	// Proportional fairness: equal raw impacts scale to equal values.
	assert.InDelta(t, out.ProposedChanges[0].ImpactPoints, out.ProposedChanges[1].ImpactPoints, 0.001)
}

func TestNormalizeImpactPoints_RespectsCeilingBelow100(t *testing.T) {
	in := analysisWith(70, &models.ScoreCeiling{Maximum: 85, Blockers: []string{"missing required certification"}}, 20, 10)

	out := NormalizeImpactPoints(in)

	var total float64
	for _, change := range out.ProposedChanges {
		total += change.ImpactPoints
	}
	assert.InDelta(t, 15, total, 0.001, "ceiling 85 leaves a budget of 15, not 30")
}

func TestNormalizeImpactPoints_CeilingAbove100ClampedTo100(t *testing.T) {
	in := analysisWith(90, &models.ScoreCeiling{Maximum: 120}, 20)

	out := NormalizeImpactPoints(in)
	assert.InDelta(t, 10, out.ProposedChanges[0].ImpactPoints, 0.001)
}

func TestNormalizeImpactPoints_ZeroBudgetCollapse(t *testing.T) {
	in := analysisWith(92, &models.ScoreCeiling{Maximum: 85}, 5, 3, 7)

	out := NormalizeImpactPoints(in)

	for _, change := range out.ProposedChanges {
		assert.Equal(t, 0.0, change.ImpactPoints,
			"current score at or above the cap collapses every impact to zero")
	}
}

func TestNormalizeImpactPoints_ScalesPerKeywordValues(t *testing.T) {
	per := 5.0
	in := models.ResumeAnalysisResult{
		CurrentScore: models.ScoreBreakdown{Total: 80},
		ScoreCeiling: &models.ScoreCeiling{Maximum: 90},
		ProposedChanges: []models.ProposedChange{
			{
				KeywordsAdded:    []string{"go", "redis", "docker", "kafka"},
				ImpactPoints:     20,
				ImpactPerKeyword: &per,
			},
		},
	}

	out := NormalizeImpactPoints(in)

	require.NotNil(t, out.ProposedChanges[0].ImpactPerKeyword)
	assert.InDelta(t, 10, out.ProposedChanges[0].ImpactPoints, 0.001)
	assert.InDelta(t, 2.5, *out.ProposedChanges[0].ImpactPerKeyword, 0.001,
		"per-keyword attribution scales with the impact")
}

func TestNormalizeImpactPoints_DoesNotMutateInput(t *testing.T) {
	per := 3.0
	in := models.ResumeAnalysisResult{
		CurrentScore: models.ScoreBreakdown{Total: 95},
		ProposedChanges: []models.ProposedChange{
			{ImpactPoints: 9, ImpactPerKeyword: &per, KeywordsAdded: []string{"a", "b", "c"}},
			{ImpactPoints: 6},
		},
	}

	_ = NormalizeImpactPoints(in)

	assert.Equal(t, 9.0, in.ProposedChanges[0].ImpactPoints)
	assert.Equal(t, 6.0, in.ProposedChanges[1].ImpactPoints)
	assert.Equal(t, 3.0, per)
}

func TestNormalizeImpactPoints_RoundedSumNeverExceedsBudget(t *testing.T) {
	// Scaling to 0.7 lands every value on 3.5; rounding each up would
	// reach 24 against a budget of 21 without the clip.
	in := analysisWith(79, nil, 5, 5, 5, 5, 5, 5)

	out := NormalizeImpactPoints(in)

	var roundedSum float64
	for _, change := range out.ProposedChanges {
		roundedSum += math.Round(change.ImpactPoints)
	}
	assert.LessOrEqual(t, roundedSum, 21.0,
		"sum of rounded impacts must never exceed the budget")
}
