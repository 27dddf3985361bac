// Package processors reduces fetched HTML to prompt-ready text.
package processors

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	newlineRegex    = regexp.MustCompile(`\n{3,}`)

	// Boilerplate that survives tag stripping on JS-heavy pages
	noisePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bJavaScript\s+is\s+disabled\b[^.]*\.`),
		regexp.MustCompile(`\bPlease\s+enable\s+JavaScript\b[^.]*\.?`),
		regexp.MustCompile(`\bThis\s+site\s+requires\s+JavaScript\b[^.]*\.?`),
		regexp.MustCompile(`\bAccept\s+all\s+cookies\b[^.]*\.?`),
	}
)

// HTMLCleaner reduces job-posting HTML to plain text for prompting
type HTMLCleaner struct {
	removeTags       []string
	postingSelectors []string
}

// NewHTMLCleaner creates a new HTML cleaner instance
func NewHTMLCleaner() *HTMLCleaner {
	return &HTMLCleaner{
		removeTags: []string{
			"script", "style", "noscript", "iframe", "object", "embed",
			"form", "input", "button", "select", "textarea",
			"nav", "header", "footer", "aside", "menu",
			"svg", "path", "meta", "link", "title", "base",
		},
		postingSelectors: []string{
			"main", "[role='main']", "#main",
			".job", ".job-posting", ".job-detail", ".job-description",
			".posting", ".position", ".vacancy",
			".content", ".description", ".details",
			"article", "section[class*='job']", "section[class*='posting']",
			"[data-testid*='job']", "[data-test*='job']",
		},
	}
}

// ExtractPostingText pulls the text likely to contain the job posting,
// falling back to the whole body when no known container matches
func (hc *HTMLCleaner) ExtractPostingText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	for _, tag := range hc.removeTags {
		doc.Find(tag).Remove()
	}

	var parts []string
	seen := make(map[string]bool)

	for _, selector := range hc.postingSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) <= 50 || seen[text] {
				return
			}
			seen[text] = true
			parts = append(parts, text)
		})
	}

	if len(parts) == 0 {
		if bodyText := strings.TrimSpace(doc.Find("body").Text()); bodyText != "" {
			parts = append(parts, bodyText)
		}
	}

	return cleanExtractedText(strings.Join(parts, "\n\n")), nil
}

// ApproximateTokens estimates the token count for cleaned text
func (hc *HTMLCleaner) ApproximateTokens(text string) int {
	// Rough estimation: ~4 characters per token
	return len(text) / 4
}

func cleanExtractedText(text string) string {
	text = whitespaceRegex.ReplaceAllString(text, " ")
	text = newlineRegex.ReplaceAllString(text, "\n\n")

	for _, pattern := range noisePatterns {
		text = pattern.ReplaceAllString(text, "")
	}

	return strings.TrimSpace(text)
}
