package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"folio-api/internal/auth"
	"folio-api/pkg/models"
)

// Context keys set by the auth middlewares
const (
	ContextKeyAdminRole = "admin_role"
	ContextKeyAPIKeyID  = "api_key_id"
)

// AdminAuth validates the admin session cookie and rejects the request
// with 401 when it is missing, expired or tampered with
func AdminAuth(sessions *auth.SessionManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(sessions.CookieName())
			if err != nil || cookie.Value == "" {
				return unauthorized(c, "Admin session required")
			}

			claims, err := sessions.ValidateToken(cookie.Value)
			if err != nil {
				return unauthorized(c, "Invalid or expired session")
			}

			c.Set(ContextKeyAdminRole, claims.Role)
			return next(c)
		}
	}
}

// APIKeyAuth resolves an X-API-Key header against the key store. The
// middleware is advisory: anonymous requests pass through, but a resolved
// key marks the request as programmatic so the rate limiter can exempt it.
func APIKeyAuth(keys *auth.APIKeyStore) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawKey := c.Request().Header.Get("X-API-Key")
			if rawKey == "" {
				return next(c)
			}

			record, err := keys.Authenticate(c.Request().Context(), rawKey)
			if err != nil {
				return unauthorized(c, "Invalid API key")
			}

			c.Set(ContextKeyAPIKeyID, record.ID)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:     "unauthorized",
		Message:   message,
		RequestID: RequestID(c),
		Timestamp: time.Now(),
	})
}
