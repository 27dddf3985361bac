package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"folio-api/internal/api/middleware"
	"folio-api/internal/background"
	"folio-api/internal/llm"
	"folio-api/internal/logging"
	"folio-api/internal/scoring"
	"folio-api/pkg/models"
	"folio-api/pkg/utils"
)

// AnalyzeResumeHandler handles POST /api/v1/resume/analyze asynchronously:
// the analysis runs in the background and the client polls by process ID
func AnalyzeResumeHandler(llmManager *llm.Manager, taskManager background.TaskManager, blob *utils.SpacesClient) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)
		logger := logging.GetGlobalLogger()

		var req models.AnalyzeResumeRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.CreateAsyncErrorResponse(
				"invalid_request",
				"Invalid request body: "+err.Error(),
			))
		}

		if err := requestValidator.Struct(&req); err != nil {
			return c.JSON(http.StatusBadRequest, models.CreateAsyncErrorResponse(
				"validation_failed",
				"Request validation failed: "+err.Error(),
			))
		}

		processID := utils.GenerateProcessID()

		logger.Info("Submitting resume analysis task", map[string]interface{}{
			"request_id": requestID,
			"process_id": processID,
			"resume_id":  req.ResumeID,
		})

		if err := taskManager.SubmitAnalyzeTask(c.Request().Context(), processID, req, llmManager, blob); err != nil {
			logger.Error("Failed to submit analysis task", map[string]interface{}{
				"request_id": requestID,
				"process_id": processID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusInternalServerError, models.CreateAsyncErrorResponse(
				"task_submission_failed",
				"Failed to submit resume analysis task: "+err.Error(),
				processID,
			))
		}

		return c.JSON(http.StatusAccepted, models.CreateAsyncAnalyzeResponse(processID))
	}
}

// ProjectionHandler handles POST /api/v1/resume/projection: a synchronous
// projected-score computation for the client's current accept/edit state
func ProjectionHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)

		var req models.ProjectionRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, requestID, "Invalid request body: "+err.Error())
		}
		if err := requestValidator.Struct(&req); err != nil {
			return badRequest(c, requestID, "Request validation failed: "+err.Error())
		}

		base := req.Analysis.CurrentScore.Total
		projected := scoring.CalculateProjectedScore(
			base,
			req.Analysis.ProposedChanges,
			req.AcceptedIndices,
			req.EditedTexts,
			req.Analysis.ScoreCeiling,
		)

		cap := 100.0
		if req.Analysis.ScoreCeiling != nil && req.Analysis.ScoreCeiling.Maximum < cap {
			cap = req.Analysis.ScoreCeiling.Maximum
		}

		return c.JSON(http.StatusOK, models.ProjectionResponse{
			ProjectedScore: projected,
			BaseScore:      base,
			Ceiling:        cap,
			RequestID:      requestID,
		})
	}
}
