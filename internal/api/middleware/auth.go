package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/hangeul-lab/authoring/internal/api/shared"
	"github.com/hangeul-lab/authoring/internal/platform/logger"
	"github.com/hangeul-lab/authoring/internal/redact"
	"github.com/hangeul-lab/authoring/internal/service/auth"
)

// AuthMiddleware authenticates requests by their session token.
type AuthMiddleware struct {
	jwtService auth.JWTService
	cookieName string
}

// NewAuthMiddleware creates an AuthMiddleware that reads the session token
// from the cookie named cookieName or from a Bearer Authorization header.
func NewAuthMiddleware(jwtService auth.JWTService, cookieName string) *AuthMiddleware {
	if jwtService == nil {
		panic("jwtService cannot be nil")
	}
	return &AuthMiddleware{
		jwtService: jwtService,
		cookieName: cookieName,
	}
}

// Authenticate validates the session token and adds the user ID to the
// request context. The Authorization header wins over the cookie.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := m.token(r)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "unauthorized", "Invalid authorization format")
			return
		}
		if token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "token_expired", "Token expired")
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrWrongTokenType),
				errors.Is(err, auth.ErrMissingToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "unauthorized", "Invalid token")
			default:
				logger.FromContext(r.Context()).Error("failed to validate token", "error", redact.Error(err))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "internal", "Authentication error")
			}
			return
		}

		ctx := shared.WithUserID(r.Context(), claims.UserID)
		ctx = logger.WithLogger(ctx, logger.FromContext(ctx).With("user_id", claims.UserID.String()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// token returns the session token of r. ok is false when an Authorization
// header is present but malformed.
func (m *AuthMiddleware) token(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return "", false
		}
		return strings.TrimSpace(token), true
	}
	if m.cookieName == "" {
		return "", true
	}
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", true
	}
	return cookie.Value, true
}
