package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hangeul-lab/authoring/internal/api/shared"
	"github.com/hangeul-lab/authoring/internal/domain"
	"github.com/hangeul-lab/authoring/internal/platform/logger"
)

// getPathID extracts a positive int64 from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, &domain.ValidationError{Field: paramName, Message: "is required", Err: domain.ErrInvalidID}
	}
	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Field: paramName, Message: "has invalid format", Err: domain.ErrInvalidID}
	}
	return id, nil
}

// handleUserID extracts the authenticated user. It writes a 401 and
// returns false when there is none.
func handleUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := shared.UserID(r.Context())
	if !ok {
		if log == nil {
			log = logger.FromContextOrDefault(r.Context(), slog.Default())
		}
		log.Warn("user ID not found or invalid in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return uuid.Nil, false
	}
	return userID, true
}

// handleUserIDAndPathID extracts both the user ID from context and the
// {id} path parameter. It writes an error response if either fails.
func handleUserIDAndPathID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, int64, bool) {
	userID, ok := handleUserID(w, r, log)
	if !ok {
		return uuid.Nil, 0, false
	}
	id, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return uuid.Nil, 0, false
	}
	return userID, id, true
}

// decodeAndValidate decodes the request body into v and validates it. It
// writes a 400 and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			HandleAPIError(w, r, err, "")
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, CodeInvalid, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		HandleAPIError(w, r, err, "Validation error")
		return false
	}
	return true
}
