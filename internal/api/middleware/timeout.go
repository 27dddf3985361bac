package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// llmPathPrefixes are routes whose handlers wait on the LLM and need the
// longer timeout
var llmPathPrefixes = []string{
	"/api/v1/chat",
	"/api/v1/assess",
	"/api/v1/admin/generate",
}

// SelectiveTimeoutConfig applies the default timeout to every route except
// the LLM-bound ones, which LLMTimeoutConfig covers with a longer budget
func SelectiveTimeoutConfig(defaultTimeout time.Duration) echo.MiddlewareFunc {
	return middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: defaultTimeout,
		Skipper: func(c echo.Context) bool {
			return isLLMPath(c.Path())
		},
	})
}

// LLMTimeoutConfig is the counterpart applied only to LLM-bound routes
func LLMTimeoutConfig(llmTimeout time.Duration) echo.MiddlewareFunc {
	return middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: llmTimeout,
		Skipper: func(c echo.Context) bool {
			return !isLLMPath(c.Path())
		},
	})
}

func isLLMPath(path string) bool {
	for _, prefix := range llmPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
