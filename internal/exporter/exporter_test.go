package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-api/pkg/models"
)

func sampleSections() []models.ResumeSection {
	return []models.ResumeSection{
		{Path: "summary", Title: "Summary", Text: "Engineer with backend experience."},
		{Path: "experience/0", Title: "Acme Corp", Text: "Built internal tools."},
	}
}

func sampleChanges() []models.ProposedChange {
	return []models.ProposedChange{
		{
			Section:  "summary",
			Original: "backend experience",
			Modified: "backend and Kubernetes experience",
		},
		{
			Section:  "experience/0",
			Original: "Built internal tools.",
			Modified: "Built internal tools used by 200 engineers.",
		},
	}
}

func TestApplyChanges_AcceptedOnly(t *testing.T) {
	out := ApplyChanges(sampleSections(), sampleChanges(), []int{0}, nil)

	assert.Contains(t, out[0].Text, "Kubernetes")
	assert.Equal(t, "Built internal tools.", out[1].Text, "unaccepted change must not apply")
}

func TestApplyChanges_EditedTextWins(t *testing.T) {
	edited := map[int]string{1: "Built developer tools adopted company-wide."}
	out := ApplyChanges(sampleSections(), sampleChanges(), []int{1}, edited)

	assert.Equal(t, "Built developer tools adopted company-wide.", out[1].Text)
}

func TestApplyChanges_SkipsMissingOriginal(t *testing.T) {
	changes := []models.ProposedChange{{
		Section:  "summary",
		Original: "text that is not there",
		Modified: "replacement",
	}}

	sections := sampleSections()
	out := ApplyChanges(sections, changes, []int{0}, nil)

	assert.Equal(t, sections[0].Text, out[0].Text)
}

func TestApplyChanges_DoesNotMutateInput(t *testing.T) {
	sections := sampleSections()
	ApplyChanges(sections, sampleChanges(), []int{0, 1}, nil)

	assert.Equal(t, "Engineer with backend experience.", sections[0].Text)
}

func TestApplyChanges_IgnoresOutOfRangeIndices(t *testing.T) {
	out := ApplyChanges(sampleSections(), sampleChanges(), []int{-1, 99}, nil)
	assert.Equal(t, sampleSections(), out)
}

func TestRenderMarkdown(t *testing.T) {
	doc, err := RenderMarkdown("resume-1", sampleSections())
	require.NoError(t, err)

	assert.Contains(t, doc, "## Summary")
	assert.Contains(t, doc, "## Acme Corp")
	assert.Contains(t, doc, "Engineer with backend experience.")
}

func TestRenderMarkdown_EmptySections(t *testing.T) {
	_, err := RenderMarkdown("resume-1", nil)
	assert.Error(t, err)
}
