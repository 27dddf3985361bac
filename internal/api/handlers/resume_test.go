package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio-api/pkg/models"
)

func performJSON(t *testing.T, handler echo.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, handler(c))
	return rec
}

func TestProjectionHandler(t *testing.T) {
	analysis := models.ResumeAnalysisResult{
		CurrentScore:   models.ScoreBreakdown{Total: 60},
		OptimizedScore: models.ScoreBreakdown{Total: 75},
		ProposedChanges: []models.ProposedChange{
			{Section: "summary", Original: "a", Modified: "b", ImpactPoints: 10},
			{Section: "skills", Original: "c", Modified: "d", ImpactPoints: 5},
		},
	}

	tests := []struct {
		name     string
		request  models.ProjectionRequest
		expected float64
	}{
		{
			name: "all changes accepted",
			request: models.ProjectionRequest{
				Analysis:        &analysis,
				AcceptedIndices: []int{0, 1},
			},
			expected: 75,
		},
		{
			name: "nothing accepted keeps base score",
			request: models.ProjectionRequest{
				Analysis:        &analysis,
				AcceptedIndices: []int{},
			},
			expected: 60,
		},
		{
			name: "ceiling caps the projection",
			request: models.ProjectionRequest{
				Analysis: &models.ResumeAnalysisResult{
					CurrentScore:    analysis.CurrentScore,
					OptimizedScore:  analysis.OptimizedScore,
					ProposedChanges: analysis.ProposedChanges,
					ScoreCeiling:    &models.ScoreCeiling{Maximum: 70},
				},
				AcceptedIndices: []int{0, 1},
			},
			expected: 70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(tt.request)
			require.NoError(t, err)

			rec := performJSON(t, ProjectionHandler(), http.MethodPost, "/api/v1/resume/projection", string(body))
			require.Equal(t, http.StatusOK, rec.Code)

			var resp models.ProjectionResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.expected, resp.ProjectedScore)
			assert.Equal(t, 60.0, resp.BaseScore)
		})
	}
}

func TestProjectionHandler_RejectsInvalidBody(t *testing.T) {
	rec := performJSON(t, ProjectionHandler(), http.MethodPost, "/api/v1/resume/projection", `{"accepted_indices":[0]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
