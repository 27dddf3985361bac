// Package auth implements admin session tokens and programmatic API keys
// for the portfolio's admin surface.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"folio-api/internal/config"
)

// SessionClaims are the JWT claims carried by the admin session cookie
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SessionManager issues and validates admin session tokens
type SessionManager struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
}

// NewSessionManager creates a session manager from configuration
func NewSessionManager(cfg *config.Config) (*SessionManager, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is required - set JWT_SECRET environment variable")
	}

	return &SessionManager{
		secret:     []byte(cfg.Auth.JWTSecret),
		ttl:        cfg.Auth.SessionTTL,
		cookieName: cfg.Auth.CookieName,
	}, nil
}

// CookieName returns the name of the session cookie
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// TTL returns the configured session lifetime
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// IssueToken mints a signed admin session token
func (sm *SessionManager) IssueToken() (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(sm.ttl)

	claims := SessionClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "folio-api",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(sm.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, expiresAt, nil
}

// ValidateToken parses and verifies a session token, returning its claims
func (sm *SessionManager) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return sm.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid session token claims")
	}

	if claims.Role != "admin" {
		return nil, fmt.Errorf("session token lacks admin role")
	}

	return claims, nil
}

// VerifyPassword compares the admin password against the configured bcrypt hash
func VerifyPassword(password, hash string) error {
	if hash == "" {
		return fmt.Errorf("admin password hash not configured - set ADMIN_PASSWORD_HASH environment variable")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("password verification failed: %w", err)
	}
	return nil
}

// HashPassword produces a bcrypt hash for provisioning the admin credential
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
