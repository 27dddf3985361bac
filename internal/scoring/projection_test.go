package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"folio-api/pkg/models"
)

func TestCalculateProjectedScore_CapsAtCeiling(t *testing.T) {
	changes := []models.ProposedChange{{ImpactPoints: 30}}
	ceiling := &models.ScoreCeiling{Maximum: 85}

	score := CalculateProjectedScore(65, changes, []int{0}, nil, ceiling)
	assert.Equal(t, 85.0, score, "projected score must cap at the ceiling, not reach 95")
}

func TestCalculateProjectedScore_CeilingNeverLifts(t *testing.T) {
	changes := []models.ProposedChange{{ImpactPoints: 5}}
	ceiling := &models.ScoreCeiling{Maximum: 85}

	score := CalculateProjectedScore(65, changes, []int{0}, nil, ceiling)
	assert.Equal(t, 70.0, score, "a score below the ceiling is unaffected by it")
}

func TestCalculateProjectedScore_SkipsRejectedChanges(t *testing.T) {
	changes := []models.ProposedChange{
		{ImpactPoints: 3},
		{ImpactPoints: 5},
		{ImpactPoints: 7},
	}

	score := CalculateProjectedScore(60, changes, []int{0, 2}, nil, nil)
	assert.Equal(t, 70.0, score)
}

func TestCalculateProjectedScore_NoAcceptedChanges(t *testing.T) {
	changes := []models.ProposedChange{{ImpactPoints: 10}}

	score := CalculateProjectedScore(72, changes, nil, nil, nil)
	assert.Equal(t, 72.0, score)
}

func TestCalculateProjectedScore_DefaultCapIs100(t *testing.T) {
	changes := []models.ProposedChange{{ImpactPoints: 40}}

	score := CalculateProjectedScore(85, changes, []int{0}, nil, nil)
	assert.Equal(t, 100.0, score)
}

func TestCalculateProjectedScore_EndToEndUnedited(t *testing.T) {
	changes := []models.ProposedChange{
		{ImpactPoints: 3, KeywordsAdded: []string{"keyword1"}},
		{ImpactPoints: 5, KeywordsAdded: []string{"keyword2"}},
	}

	score := CalculateProjectedScore(72, changes, []int{0, 1}, nil, nil)
	assert.Equal(t, 80.0, score)
}

func TestCalculateProjectedScore_EndToEndEdited(t *testing.T) {
	per := 3.0
	changes := []models.ProposedChange{
		{
			KeywordsAdded:    []string{"keyword1", "keyword2"},
			ImpactPoints:     6,
			ImpactPerKeyword: &per,
		},
	}
	edited := map[int]string{0: "rewrote the bullet keeping keyword1 only"}

	score := CalculateProjectedScore(72, changes, []int{0}, edited, nil)
	assert.Equal(t, 75.0, score, "edited change retaining one of two keywords grants 3 points")
}

func TestCalculateProjectedScore_EditedOutKeywordsGrantNothing(t *testing.T) {
	changes := []models.ProposedChange{
		{KeywordsAdded: []string{"golang"}, ImpactPoints: 4},
	}
	edited := map[int]string{0: "generic wording without the term"}

	score := CalculateProjectedScore(50, changes, []int{0}, edited, nil)
	assert.Equal(t, 50.0, score)
}

func TestCalculateProjectedScore_AcceptedIndexOutOfRangeIgnored(t *testing.T) {
	changes := []models.ProposedChange{{ImpactPoints: 5}}

	score := CalculateProjectedScore(40, changes, []int{0, 7, -1}, nil, nil)
	assert.Equal(t, 45.0, score)
}
