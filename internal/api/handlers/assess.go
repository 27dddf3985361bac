package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"folio-api/internal/api/middleware"
	"folio-api/internal/fetch"
	"folio-api/internal/llm"
	"folio-api/internal/llm/processors"
	"folio-api/internal/logging"
	"folio-api/pkg/models"
	"folio-api/pkg/utils"
)

// AssessFitHandler handles POST /api/v1/assess. The job side comes either
// as inline text or as a URL fetched through the SSRF guard and reduced to
// text before prompting.
func AssessFitHandler(llmManager *llm.Manager, fetcher *fetch.Fetcher) echo.HandlerFunc {
	cleaner := processors.NewHTMLCleaner()

	return func(c echo.Context) error {
		requestID := middleware.RequestID(c)
		logger := logging.GetGlobalLogger()
		start := time.Now()

		var req models.AssessFitRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, requestID, "Invalid request body: "+err.Error())
		}
		if err := requestValidator.Struct(&req); err != nil {
			return badRequest(c, requestID, "Request validation failed: "+err.Error())
		}

		hasText := strings.TrimSpace(req.JobDescription) != ""
		hasURL := strings.TrimSpace(req.JobURL) != ""
		if hasText == hasURL {
			return badRequest(c, requestID, "Provide exactly one of job_description or job_url")
		}

		ctx := c.Request().Context()
		jobText := req.JobDescription

		if hasURL {
			result, err := fetcher.Fetch(ctx, req.JobURL)
			if err != nil {
				logger.Warn("Job URL fetch rejected or failed", map[string]interface{}{
					"request_id": requestID,
					"url":        req.JobURL,
					"error":      err.Error(),
				})

				// Guard rejections carry their own status code
				var blocked *utils.CustomError
				if errors.As(err, &blocked) {
					return c.JSON(blocked.Code, models.ErrorResponse{
						Error:     "url_blocked",
						Message:   blocked.Error(),
						RequestID: requestID,
						Timestamp: time.Now(),
					})
				}
				return badRequest(c, requestID, "Could not fetch job posting: "+err.Error())
			}

			jobText, err = cleaner.ExtractPostingText(result.Body)
			if err != nil || strings.TrimSpace(jobText) == "" {
				return badRequest(c, requestID, "Fetched page contains no readable job posting")
			}
		}

		assessment, err := llmManager.AssessFit(ctx, req.ResumeText, jobText)
		if err != nil {
			logger.Error("Fit assessment failed", map[string]interface{}{
				"request_id": requestID,
				"error":      err.Error(),
			})
			return c.JSON(http.StatusServiceUnavailable, models.AssessFitResponse{
				Success:        false,
				Error:          "Fit assessment is temporarily unavailable",
				ProcessingTime: time.Since(start),
				RequestID:      requestID,
			})
		}

		return c.JSON(http.StatusOK, models.AssessFitResponse{
			Success:        true,
			Assessment:     assessment,
			ProcessingTime: time.Since(start),
			RequestID:      requestID,
		})
	}
}
