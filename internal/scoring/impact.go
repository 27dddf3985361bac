// Package scoring implements the ATS compatibility scoring engine: keyword
// impact attribution for edited changes, proportional impact normalization
// against the score ceiling, and projected score accumulation. All functions
// are pure and operate on request-scoped values.
package scoring

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"folio-api/pkg/models"
)

// CalculateEditedImpact returns the point impact a proposed change still
// grants after the user edited its text. Each keyword that survives in the
// edited text retains its per-keyword share; keywords that were edited out
// forfeit theirs. A change with no keywords keeps its full value since there
// is nothing to validate against.
func CalculateEditedImpact(change models.ProposedChange, editedText string) float64 {
	if len(change.KeywordsAdded) == 0 {
		return change.ImpactPoints
	}

	perKeyword := change.ImpactPoints / float64(len(change.KeywordsAdded))
	if change.ImpactPerKeyword != nil {
		perKeyword = *change.ImpactPerKeyword
	}

	retained := 0
	for _, keyword := range change.KeywordsAdded {
		if keywordRetained(keyword, editedText) {
			retained++
		}
	}

	return math.Round(float64(retained) * perKeyword)
}

// keywordRetained reports whether the keyword is still present in the edited
// text, case-insensitively. Single alphanumeric tokens match on word
// boundaries so "c" cannot match inside "cloud"; phrases and
// punctuation-bearing keywords ("c++", "platform engineering") match as
// literal substrings.
func keywordRetained(keyword, text string) bool {
	if isSingleAlnumToken(keyword) {
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
		return pattern.MatchString(text)
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(keyword))
}

// isSingleAlnumToken reports whether the keyword is one token of letters
// and digits only. Anything with spaces or punctuation falls back to
// literal substring matching.
func isSingleAlnumToken(keyword string) bool {
	if keyword == "" {
		return false
	}
	for _, r := range keyword {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
