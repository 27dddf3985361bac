package llm

import (
	"context"

	"folio-api/pkg/models"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// AnalyzeResume scores a resume against a job description and proposes
	// keyword-bearing edits. The returned analysis is raw: impact points
	// are normalized by the scoring package before leaving the server.
	AnalyzeResume(ctx context.Context, resumeText, jobDescription string) (*models.ResumeAnalysisResult, error)

	// AssessFit produces a quick fit verdict for a resume against a job
	AssessFit(ctx context.Context, resumeText, jobText string) (*models.FitAssessment, error)

	// Chat answers a visitor message given the prior conversation turns
	Chat(ctx context.Context, history []models.ChatTurn, message string) (string, error)

	// IsHealthy checks if the LLM provider is healthy and available
	IsHealthy(ctx context.Context) error

	// GetProviderName returns the name of the LLM provider
	GetProviderName() string
}
