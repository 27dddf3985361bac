package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateRequestID generates a unique request ID for tracking
func GenerateRequestID() string {
	return uuid.New().String()
}

// GenerateProcessID generates a process ID for async background tasks
func GenerateProcessID() string {
	return fmt.Sprintf("proc_%s", uuid.New().String())
}

// GenerateSessionID generates a chat session identifier
func GenerateSessionID() string {
	return uuid.New().String()
}
