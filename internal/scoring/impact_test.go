package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"folio-api/pkg/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestCalculateEditedImpact_FullRetention(t *testing.T) {
	change := models.ProposedChange{
		Section:       "experience.0.bullets.1",
		Modified:      "Built Kubernetes operators in Go",
		KeywordsAdded: []string{"Kubernetes", "Go"},
		ImpactPoints:  8,
	}

	impact := CalculateEditedImpact(change, "Designed and built Kubernetes operators in Go")
	assert.Equal(t, 8.0, impact, "all keywords retained should grant full impact")
}

func TestCalculateEditedImpact_ZeroRetention(t *testing.T) {
	change := models.ProposedChange{
		KeywordsAdded: []string{"Terraform", "Ansible"},
		ImpactPoints:  6,
	}

	impact := CalculateEditedImpact(change, "Automated infrastructure provisioning")
	assert.Equal(t, 0.0, impact, "removing every keyword should forfeit the impact")
}

func TestCalculateEditedImpact_EmptyKeywordList(t *testing.T) {
	change := models.ProposedChange{
		KeywordsAdded: nil,
		ImpactPoints:  4,
	}

	tests := []string{"", "anything at all", "completely unrelated text"}
	for _, edited := range tests {
		assert.Equal(t, 4.0, CalculateEditedImpact(change, edited),
			"changes without keywords keep full value regardless of edits")
	}
}

func TestCalculateEditedImpact_CaseInsensitive(t *testing.T) {
	change := models.ProposedChange{
		KeywordsAdded: []string{"Kubernetes"},
		ImpactPoints:  5,
	}

	assert.Equal(t, 5.0, CalculateEditedImpact(change, "ran kubernetes clusters"))
	assert.Equal(t, 5.0, CalculateEditedImpact(change, "ran KUBERNETES clusters"))
}

func TestCalculateEditedImpact_NoSubstringFalsePositives(t *testing.T) {
	tests := []struct {
		name     string
		keyword  string
		edited   string
		retained bool
	}{
		{"single letter inside word", "c", "cloud infrastructure", false},
		{"single letter standalone", "c", "wrote c and assembly", true},
		{"punctuation keyword vs shorter literal", "c++", "used c+ notation", false},
		{"punctuation keyword exact", "c++", "modern c++ codebases", true},
		{"phrase literal match", "platform engineering", "led the Platform Engineering group", true},
		{"phrase missing word", "platform engineering", "platform team engineering-adjacent", false},
		{"token not split by hyphenation", "java", "javascript only", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change := models.ProposedChange{
				KeywordsAdded: []string{tt.keyword},
				ImpactPoints:  3,
			}
			want := 0.0
			if tt.retained {
				want = 3.0
			}
			assert.Equal(t, want, CalculateEditedImpact(change, tt.edited))
		})
	}
}

func TestCalculateEditedImpact_PartialRetentionUsesPerKeyword(t *testing.T) {
	change := models.ProposedChange{
		KeywordsAdded:    []string{"keyword1", "keyword2"},
		ImpactPoints:     6,
		ImpactPerKeyword: floatPtr(3),
	}

	impact := CalculateEditedImpact(change, "kept keyword1 but dropped the other")
	assert.Equal(t, 3.0, impact)
}

func TestCalculateEditedImpact_DerivesPerKeywordWhenAbsent(t *testing.T) {
	change := models.ProposedChange{
		KeywordsAdded: []string{"redis", "postgres", "kafka"},
		ImpactPoints:  10,
	}

	// 2 of 3 retained at 10/3 per keyword, rounded.
	impact := CalculateEditedImpact(change, "tuned redis and postgres throughput")
	assert.Equal(t, 7.0, impact)
}
