package processors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPostingText_PrefersJobContainer(t *testing.T) {
	html := `<html><body>
		<nav>Home | Jobs | About</nav>
		<div class="job-description">` +
		strings.Repeat("Senior Go engineer building distributed systems. ", 3) +
		`</div>
		<footer>Copyright</footer>
	</body></html>`

	cleaner := NewHTMLCleaner()
	text, err := cleaner.ExtractPostingText(html)
	require.NoError(t, err)

	assert.Contains(t, text, "Senior Go engineer")
	assert.NotContains(t, text, "Copyright")
	assert.NotContains(t, text, "Home | Jobs")
}

func TestExtractPostingText_FallsBackToBody(t *testing.T) {
	html := `<html><body><p>Short plain page about an opening.</p></body></html>`

	cleaner := NewHTMLCleaner()
	text, err := cleaner.ExtractPostingText(html)
	require.NoError(t, err)

	assert.Contains(t, text, "Short plain page about an opening.")
}

func TestExtractPostingText_StripsScriptAndNoise(t *testing.T) {
	html := `<html><body>
		<script>alert("tracking")</script>
		<main>` +
		strings.Repeat("Backend role requiring Kubernetes experience. ", 3) +
		`JavaScript is disabled in your browser.</main>
	</body></html>`

	cleaner := NewHTMLCleaner()
	text, err := cleaner.ExtractPostingText(html)
	require.NoError(t, err)

	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "JavaScript is disabled")
	assert.Contains(t, text, "Kubernetes")
}

func TestApproximateTokens(t *testing.T) {
	cleaner := NewHTMLCleaner()
	assert.Equal(t, 10, cleaner.ApproximateTokens(strings.Repeat("a", 40)))
}
