package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsLLMPath(t *testing.T) {
	tests := []struct {
		path string
		llm  bool
	}{
		{"/api/v1/chat", true},
		{"/api/v1/chat/:session_id/archive", true},
		{"/api/v1/assess", true},
		{"/api/v1/admin/generate", true},
		{"/api/v1/resume/projection", false},
		{"/api/v1/tasks/:id", false},
		{"/health", false},
		{"/", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.llm, isLLMPath(tt.path))
		})
	}
}
