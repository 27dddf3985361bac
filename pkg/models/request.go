package models

// ChatTurn is one prior exchange in a chat conversation
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents the request payload for the portfolio chat endpoint
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty" validate:"omitempty,uuid4"`
	Message   string `json:"message" validate:"required,max=4000"`
}

// AssessFitRequest represents a fit-assessment request. Exactly one of
// JobDescription or JobURL must be provided; a URL goes through the
// SSRF-guarded fetcher before prompting.
type AssessFitRequest struct {
	ResumeText     string `json:"resume_text" validate:"required,max=50000"`
	JobDescription string `json:"job_description,omitempty" validate:"omitempty,max=50000"`
	JobURL         string `json:"job_url,omitempty" validate:"omitempty,url"`
}

// AnalyzeResumeRequest submits a resume for async ATS analysis
type AnalyzeResumeRequest struct {
	ResumeID       string `json:"resume_id" validate:"required,resume_id"`
	ResumeText     string `json:"resume_text" validate:"required,max=50000"`
	JobDescription string `json:"job_description" validate:"required,max=50000"`
}

// ProjectionRequest computes the projected score for the current
// accept/reject/edit state of an analysis. EditedTexts maps change index
// to the user's edited replacement text.
type ProjectionRequest struct {
	// Pointer so a missing analysis fails required validation instead of
	// scoring a zero value.
	Analysis        *ResumeAnalysisResult `json:"analysis" validate:"required"`
	AcceptedIndices []int                 `json:"accepted_indices"`
	EditedTexts     map[int]string        `json:"edited_texts,omitempty"`
}

// AdminLoginRequest carries the admin portal credentials
type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// CreateAPIKeyRequest names a new programmatic access key
type CreateAPIKeyRequest struct {
	Label string `json:"label" validate:"required,max=100"`
}

// GenerateResumeRequest finalizes an analysis session: accepted changes are
// applied to the resume sections and the document is exported to storage.
type GenerateResumeRequest struct {
	ResumeID        string                `json:"resume_id" validate:"required,resume_id"`
	Sections        []ResumeSection       `json:"sections" validate:"required,dive"`
	Analysis        *ResumeAnalysisResult `json:"analysis" validate:"required"`
	AcceptedIndices []int                 `json:"accepted_indices"`
	EditedTexts     map[int]string        `json:"edited_texts,omitempty"`
}

// ResumeSection is one addressable block of resume text. Path matches the
// opaque section identifier used by ProposedChange.
type ResumeSection struct {
	Path  string `json:"path" validate:"required"`
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}
