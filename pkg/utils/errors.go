package utils

import (
	"fmt"
	"net/http"
)

// CustomError is an application error that carries the HTTP status code
// handlers should respond with
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// NewBlockedURLError marks a fetch target rejected by the SSRF guard
func NewBlockedURLError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusUnprocessableEntity,
		Message: "URL is not fetchable",
		Detail:  detail,
	}
}
