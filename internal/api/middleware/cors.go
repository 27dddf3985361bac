package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// CORSConfig returns CORS middleware configuration. With explicit origins
// configured, credentialed requests are allowed so the admin portal can
// send its session cookie; the wildcard fallback stays credential-free.
func CORSConfig(allowedOrigins []string) echo.MiddlewareFunc {
	allowCredentials := len(allowedOrigins) > 0
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-API-Key"},
		AllowCredentials: allowCredentials,
		MaxAge:           86400, // 24 hours
	})
}
