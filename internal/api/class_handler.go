package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hangeul-lab/authoring/internal/store"
)

// ClassHandler serves classes, their lessons and lesson materials.
type ClassHandler struct {
	store  store.ClassStore
	logger *slog.Logger
}

// NewClassHandler creates a ClassHandler.
func NewClassHandler(s store.ClassStore, logger *slog.Logger) *ClassHandler {
	if s == nil {
		panic("store cannot be nil for ClassHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassHandler{
		store:  s,
		logger: logger.With(slog.String("component", "class_handler")),
	}
}

// Routes registers the handler's endpoints on r.
func (h *ClassHandler) Routes(r chi.Router) {
	r.Post("/classes", h.Create)
	r.Get("/classes/{id}", h.Get)
	r.Put("/classes/{id}", h.Update)
	r.Post("/classes/{id}/lessons", h.CreateLesson)
	r.Put("/lessons/{id}", h.UpdateLesson)
	r.Delete("/lessons/{id}", h.DeleteLesson)
	r.Post("/lessons/{id}/materials", h.CreateMaterial)
	r.Put("/lesson-materials/{id}", h.UpdateMaterial)
	r.Delete("/lesson-materials/{id}", h.DeleteMaterial)
}

// Get handles GET /classes/{id}.
func (h *ClassHandler) Get(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, h.logger, "Failed to load class", h.store.Get)
}

// Create handles POST /classes.
func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request) {
	serveCreate(w, r, h.logger, false, "Failed to create class",
		func(ctx context.Context, owner uuid.UUID, _ int64, req *ClassRequest) (int64, error) {
			return h.store.Create(ctx, owner, req.ClassFields)
		})
}

// Update handles PUT /classes/{id}.
func (h *ClassHandler) Update(w http.ResponseWriter, r *http.Request) {
	serveUpdate(w, r, h.logger, "Failed to update class",
		func(ctx context.Context, owner uuid.UUID, id int64, req *ClassRequest) error {
			return h.store.Update(ctx, owner, id, req.ClassFields)
		})
}

// CreateLesson handles POST /classes/{id}/lessons.
func (h *ClassHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	serveCreate(w, r, h.logger, true, "Failed to create lesson",
		func(ctx context.Context, owner uuid.UUID, classID int64, req *LessonRequest) (int64, error) {
			return h.store.CreateLesson(ctx, owner, classID, req.Position, req.LessonFields)
		})
}

// UpdateLesson handles PUT /lessons/{id}.
func (h *ClassHandler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	serveUpdate(w, r, h.logger, "Failed to update lesson",
		func(ctx context.Context, owner uuid.UUID, id int64, req *LessonRequest) error {
			return h.store.UpdateLesson(ctx, owner, id, req.Position, req.LessonFields)
		})
}

// DeleteLesson handles DELETE /lessons/{id}.
func (h *ClassHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	serveDelete(w, r, h.logger, "Failed to delete lesson", h.store.DeleteLesson)
}

// CreateMaterial handles POST /lessons/{id}/materials.
func (h *ClassHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	serveCreate(w, r, h.logger, true, "Failed to attach material",
		func(ctx context.Context, owner uuid.UUID, lessonID int64, req *LessonMaterialRequest) (int64, error) {
			return h.store.CreateMaterial(ctx, owner, lessonID, req.Position, req.LessonMaterialFields)
		})
}

// UpdateMaterial handles PUT /lesson-materials/{id}.
func (h *ClassHandler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	serveUpdate(w, r, h.logger, "Failed to update lesson material",
		func(ctx context.Context, owner uuid.UUID, id int64, req *LessonMaterialRequest) error {
			return h.store.UpdateMaterial(ctx, owner, id, req.Position, req.LessonMaterialFields)
		})
}

// DeleteMaterial handles DELETE /lesson-materials/{id}.
func (h *ClassHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	serveDelete(w, r, h.logger, "Failed to detach material", h.store.DeleteMaterial)
}
