package models

import "time"

// ChatResponse represents the reply from the chat endpoint
type ChatResponse struct {
	SessionID string    `json:"session_id"`
	Reply     string    `json:"reply"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// AssessFitResponse wraps a fit assessment with request metadata
type AssessFitResponse struct {
	Success        bool           `json:"success"`
	Assessment     *FitAssessment `json:"assessment,omitempty"`
	Error          string         `json:"error,omitempty"`
	ProcessingTime time.Duration  `json:"processing_time"`
	RequestID      string         `json:"request_id"`
}

// ProjectionResponse carries the projected score for the submitted
// accept/edit state
type ProjectionResponse struct {
	ProjectedScore float64 `json:"projected_score"`
	BaseScore      float64 `json:"base_score"`
	Ceiling        float64 `json:"ceiling"`
	RequestID      string  `json:"request_id"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// AdminLoginResponse confirms a successful admin login
type AdminLoginResponse struct {
	Success   bool      `json:"success"`
	ExpiresAt time.Time `json:"expires_at"`
}

// APIKeyRecord describes a stored API key. The raw key is only returned
// once, at creation time; storage keeps the hash.
type APIKeyRecord struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"`
	KeyHash   string     `json:"key_hash"`
	CreatedAt time.Time  `json:"created_at"`
	LastUsed  *time.Time `json:"last_used,omitempty"`
}

// CreateAPIKeyResponse returns the newly minted key exactly once
type CreateAPIKeyResponse struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditListResponse is a page of audit events
type AuditListResponse struct {
	Events     []AuditEvent `json:"events"`
	NextCursor string       `json:"next_cursor,omitempty"`
	Count      int          `json:"count"`
}

// AuditEvent is a single recorded admin or security-relevant action
type AuditEvent struct {
	ID        string                 `json:"id"`
	Actor     string                 `json:"actor"`
	Action    string                 `json:"action"`
	Target    string                 `json:"target,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// TrafficStatsResponse summarizes request counters per day and route
type TrafficStatsResponse struct {
	Days  []TrafficDay `json:"days"`
	Total int64        `json:"total"`
}

// TrafficDay holds the per-route counters for one calendar day
type TrafficDay struct {
	Date   string           `json:"date"`
	Routes map[string]int64 `json:"routes"`
	Total  int64            `json:"total"`
}

// GenerateResumeResponse reports a finished resume export
type GenerateResumeResponse struct {
	Success     bool    `json:"success"`
	DocumentURL string  `json:"document_url,omitempty"`
	FinalScore  float64 `json:"final_score"`
	Error       string  `json:"error,omitempty"`
	RequestID   string  `json:"request_id"`
}
