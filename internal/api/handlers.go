package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/hangeul-lab/authoring/internal/api/shared"
	"github.com/hangeul-lab/authoring/internal/platform/logger"
)

// The helpers below hold the request flow shared by every authoring
// endpoint: authenticate, read the path id, decode and validate the body,
// call the store and write the envelope.

// serveGet answers GET /things/{id}.
func serveGet[T any](
	w http.ResponseWriter, r *http.Request, base *slog.Logger, fallback string,
	get func(ctx context.Context, ownerID uuid.UUID, id int64) (T, error),
) {
	log := logger.FromContextOrDefault(r.Context(), base)
	userID, id, ok := handleUserIDAndPathID(w, r, log)
	if !ok {
		return
	}
	data, err := get(r.Context(), userID, id)
	if err != nil {
		HandleAPIError(w, r, err, fallback)
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, data)
}

// serveCreate answers POST /things and, when nested, POST
// /parents/{id}/things. parentID is zero for top-level records.
func serveCreate[T any](
	w http.ResponseWriter, r *http.Request, base *slog.Logger, nested bool, fallback string,
	create func(ctx context.Context, ownerID uuid.UUID, parentID int64, req *T) (int64, error),
) {
	log := logger.FromContextOrDefault(r.Context(), base)

	var (
		userID   uuid.UUID
		parentID int64
		ok       bool
	)
	if nested {
		userID, parentID, ok = handleUserIDAndPathID(w, r, log)
	} else {
		userID, ok = handleUserID(w, r, log)
	}
	if !ok {
		return
	}

	var req T
	if !decodeAndValidate(w, r, &req) {
		return
	}

	id, err := create(r.Context(), userID, parentID, &req)
	if err != nil {
		HandleAPIError(w, r, err, fallback)
		return
	}
	log.Debug("record created", slog.Int64("id", id), slog.Int64("parent_id", parentID))
	shared.RespondWithID(w, r, http.StatusCreated, id)
}

// serveUpdate answers PUT /things/{id}.
func serveUpdate[T any](
	w http.ResponseWriter, r *http.Request, base *slog.Logger, fallback string,
	update func(ctx context.Context, ownerID uuid.UUID, id int64, req *T) error,
) {
	log := logger.FromContextOrDefault(r.Context(), base)
	userID, id, ok := handleUserIDAndPathID(w, r, log)
	if !ok {
		return
	}

	var req T
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := update(r.Context(), userID, id, &req); err != nil {
		HandleAPIError(w, r, err, fallback)
		return
	}
	shared.RespondWithID(w, r, http.StatusOK, id)
}

// serveDelete answers DELETE /things/{id} with 204.
func serveDelete(
	w http.ResponseWriter, r *http.Request, base *slog.Logger, fallback string,
	remove func(ctx context.Context, ownerID uuid.UUID, id int64) error,
) {
	log := logger.FromContextOrDefault(r.Context(), base)
	userID, id, ok := handleUserIDAndPathID(w, r, log)
	if !ok {
		return
	}
	if err := remove(r.Context(), userID, id); err != nil {
		HandleAPIError(w, r, err, fallback)
		return
	}
	log.Debug("record deleted", slog.Int64("id", id))
	w.WriteHeader(http.StatusNoContent)
}
