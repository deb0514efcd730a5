package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionTokenType is the "type" claim of session tokens.
const SessionTokenType = "session"

// JWTService issues and validates the session tokens carried by the
// session cookie or an Authorization header.
type JWTService interface {
	// GenerateToken creates a signed session token for userID.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken validates tokenString and returns its claims. Returns
	// ErrExpiredToken, ErrTokenNotYetValid, ErrWrongTokenType or
	// ErrInvalidToken when the token cannot be accepted.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims are the validated contents of a session token.
type Claims struct {
	UserID    uuid.UUID `json:"uid,omitempty"`
	TokenType string    `json:"type,omitempty"`
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
