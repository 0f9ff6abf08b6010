package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by ParseToken for any token that fails verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload signed into every token.
type Claims struct {
	UserID    uint   `json:"uid"`
	Email     string `json:"email"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Generator signs and verifies session tokens with HS256.
type Generator struct {
	secret []byte
}

// NewGenerator creates a new JWT generator with the provided secret.
func NewGenerator(secret string) *Generator {
	return &Generator{secret: []byte(secret)}
}

// GenerateToken creates a signed token bound to sessionID that expires at expiresAt.
func (g *Generator) GenerateToken(userID uint, email, sessionID string, expiresAt time.Time) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Email:     email,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(userID),
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ParseToken verifies the signature and expiry and returns the claims.
func (g *Generator) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		// Only HMAC is accepted.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.UserID == 0 || claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}
	return claims, nil
}
