package jwtmw

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID    = "userID"
	ContextEmail     = "email"
	ContextSessionID = "sessionID"
)

// TokenParser verifies a raw token string.
type TokenParser interface {
	ParseToken(tokenStr string) (*Claims, error)
}

// SessionValidator checks that the session carried by a token is still usable.
type SessionValidator interface {
	ValidateSession(ctx context.Context, sessionID string, userID uint) error
}

// AuthRequired returns a Gin middleware function that validates bearer tokens
// and restricts access to authenticated users only.
func AuthRequired(parser TokenParser, sessions SessionValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := authenticate(c, parser, sessions, strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// Identify reads the token from the named cookie and, when it is valid, stores
// the claims on the context. Requests without a valid token pass through untouched.
func Identify(parser TokenParser, sessions SessionValidator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(cookieName)
		if err != nil || tokenStr == "" {
			c.Next()
			return
		}

		claims, err := authenticate(c, parser, sessions, tokenStr)
		if err != nil {
			slog.Debug("ignoring session cookie", "error", err)
			c.Next()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

func authenticate(c *gin.Context, parser TokenParser, sessions SessionValidator, tokenStr string) (*Claims, error) {
	claims, err := parser.ParseToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if err := sessions.ValidateSession(c.Request.Context(), claims.SessionID, claims.UserID); err != nil {
		return nil, err
	}
	return claims, nil
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextSessionID, claims.SessionID)
}

// UserID returns the authenticated user id stored by the middleware.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// SessionID returns the authenticated session id stored by the middleware.
func SessionID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextSessionID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
