package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hangeul-lab/authoring/internal/api/shared"
	"github.com/hangeul-lab/authoring/internal/domain"
	"github.com/hangeul-lab/authoring/internal/platform/logger"
	"github.com/hangeul-lab/authoring/internal/store"
)

// PostHandler serves the like counter of discussion posts.
type PostHandler struct {
	store  store.PostStore
	logger *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(s store.PostStore, logger *slog.Logger) *PostHandler {
	if s == nil {
		panic("store cannot be nil for PostHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostHandler{
		store:  s,
		logger: logger.With(slog.String("component", "post_handler")),
	}
}

// Routes registers the handler's endpoints on r.
func (h *PostHandler) Routes(r chi.Router) {
	r.Post("/posts/{id}/like", h.Like)
	r.Delete("/posts/{id}/like", h.Unlike)
}

// Like handles POST /posts/{id}/like.
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.store.Like)
}

// Unlike handles DELETE /posts/{id}/like.
func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.store.Unlike)
}

func (h *PostHandler) toggle(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, userID uuid.UUID, postID int64) (domain.PostLikes, error),
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, postID, ok := handleUserIDAndPathID(w, r, log)
	if !ok {
		return
	}
	state, err := fn(r.Context(), userID, postID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update like")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, state)
}
