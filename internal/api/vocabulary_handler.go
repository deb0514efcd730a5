package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hangeul-lab/authoring/internal/store"
)

// VocabularyHandler serves vocabulary sets and their items.
type VocabularyHandler struct {
	store  store.VocabularyStore
	logger *slog.Logger
}

// NewVocabularyHandler creates a VocabularyHandler.
func NewVocabularyHandler(s store.VocabularyStore, logger *slog.Logger) *VocabularyHandler {
	if s == nil {
		panic("store cannot be nil for VocabularyHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VocabularyHandler{
		store:  s,
		logger: logger.With(slog.String("component", "vocabulary_handler")),
	}
}

// Routes registers the handler's endpoints on r.
func (h *VocabularyHandler) Routes(r chi.Router) {
	r.Post("/vocabulary-sets", h.Create)
	r.Get("/vocabulary-sets/{id}", h.Get)
	r.Put("/vocabulary-sets/{id}", h.Update)
	r.Post("/vocabulary-sets/{id}/items", h.CreateItem)
	r.Put("/vocabulary-items/{id}", h.UpdateItem)
	r.Delete("/vocabulary-items/{id}", h.DeleteItem)
}

// Get handles GET /vocabulary-sets/{id}.
func (h *VocabularyHandler) Get(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, h.logger, "Failed to load vocabulary set", h.store.Get)
}

// Create handles POST /vocabulary-sets.
func (h *VocabularyHandler) Create(w http.ResponseWriter, r *http.Request) {
	serveCreate(w, r, h.logger, false, "Failed to create vocabulary set",
		func(ctx context.Context, owner uuid.UUID, _ int64, req *VocabularySetRequest) (int64, error) {
			return h.store.Create(ctx, owner, req.ClassID, req.VocabularySetFields)
		})
}

// Update handles PUT /vocabulary-sets/{id}.
func (h *VocabularyHandler) Update(w http.ResponseWriter, r *http.Request) {
	serveUpdate(w, r, h.logger, "Failed to update vocabulary set",
		func(ctx context.Context, owner uuid.UUID, id int64, req *VocabularySetRequest) error {
			return h.store.Update(ctx, owner, id, req.VocabularySetFields)
		})
}

// CreateItem handles POST /vocabulary-sets/{id}/items.
func (h *VocabularyHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	serveCreate(w, r, h.logger, true, "Failed to create vocabulary item",
		func(ctx context.Context, owner uuid.UUID, setID int64, req *VocabularyItemRequest) (int64, error) {
			return h.store.CreateItem(ctx, owner, setID, req.Position, req.VocabularyItemFields)
		})
}

// UpdateItem handles PUT /vocabulary-items/{id}.
func (h *VocabularyHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	serveUpdate(w, r, h.logger, "Failed to update vocabulary item",
		func(ctx context.Context, owner uuid.UUID, id int64, req *VocabularyItemRequest) error {
			return h.store.UpdateItem(ctx, owner, id, req.Position, req.VocabularyItemFields)
		})
}

// DeleteItem handles DELETE /vocabulary-items/{id}.
func (h *VocabularyHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	serveDelete(w, r, h.logger, "Failed to delete vocabulary item", h.store.DeleteItem)
}
