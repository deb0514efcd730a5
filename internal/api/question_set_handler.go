package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hangeul-lab/authoring/internal/api/shared"
	"github.com/hangeul-lab/authoring/internal/platform/logger"
	"github.com/hangeul-lab/authoring/internal/store"
)

// QuestionSetHandler serves quizzes and tryouts with their questions and
// answer options.
type QuestionSetHandler struct {
	store  store.QuestionSetStore
	logger *slog.Logger
}

// NewQuestionSetHandler creates a QuestionSetHandler.
func NewQuestionSetHandler(s store.QuestionSetStore, logger *slog.Logger) *QuestionSetHandler {
	if s == nil {
		panic("store cannot be nil for QuestionSetHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionSetHandler{
		store:  s,
		logger: logger.With(slog.String("component", "question_set_handler")),
	}
}

// Routes registers the handler's endpoints on r.
func (h *QuestionSetHandler) Routes(r chi.Router) {
	r.Get("/question-sets", h.List)
	r.Post("/question-sets", h.Create)
	r.Get("/question-sets/{id}", h.Get)
	r.Put("/question-sets/{id}", h.Update)
	r.Delete("/question-sets/{id}", h.Delete)

	r.Post("/question-sets/{id}/questions", h.CreateQuestion)
	r.Put("/questions/{id}", h.UpdateQuestion)
	r.Delete("/questions/{id}", h.DeleteQuestion)

	r.Post("/questions/{id}/options", h.CreateOption)
	r.Put("/options/{id}", h.UpdateOption)
	r.Delete("/options/{id}", h.DeleteOption)
}

// List handles GET /question-sets.
func (h *QuestionSetHandler) List(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	userID, ok := handleUserID(w, r, log)
	if !ok {
		return
	}
	sets, err := h.store.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list question sets")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, sets)
}

// Get handles GET /question-sets/{id}.
func (h *QuestionSetHandler) Get(w http.ResponseWriter, r *http.Request) {
	serveGet(w, r, h.logger, "Failed to load question set", h.store.Get)
}

// Create handles POST /question-sets.
func (h *QuestionSetHandler) Create(w http.ResponseWriter, r *http.Request) {
	serveCreate(w, r, h.logger, false, "Failed to create question set",
		func(ctx context.Context, owner uuid.UUID, _ int64, req *QuestionSetRequest) (int64, error) {
			return h.store.Create(ctx, owner, req.ClassID, req.QuestionSetFields)
		})
}

// Update handles PUT /question-sets/{id}.
func (h *QuestionSetHandler) Update(w http.ResponseWriter, r *http.Request) {
	serveUpdate(w, r, h.logger, "Failed to update question set",
		func(ctx context.Context, owner uuid.UUID, id int64, req *QuestionSetRequest) error {
			return h.store.Update(ctx, owner, id, req.QuestionSetFields)
		})
}

// Delete handles DELETE /question-sets/{id}.
func (h *QuestionSetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	serveDelete(w, r, h.logger, "Failed to delete question set", h.store.Delete)
}

// CreateQuestion handles POST /question-sets/{id}/questions.
func (h *QuestionSetHandler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	serveCreate(w, r, h.logger, true, "Failed to create question",
		func(ctx context.Context, owner uuid.UUID, setID int64, req *QuestionRequest) (int64, error) {
			return h.store.CreateQuestion(ctx, owner, setID, req.Position, req.QuestionFields)
		})
}

// UpdateQuestion handles PUT /questions/{id}.
func (h *QuestionSetHandler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	serveUpdate(w, r, h.logger, "Failed to update question",
		func(ctx context.Context, owner uuid.UUID, id int64, req *QuestionRequest) error {
			return h.store.UpdateQuestion(ctx, owner, id, req.Position, req.QuestionFields)
		})
}

// DeleteQuestion handles DELETE /questions/{id}.
func (h *QuestionSetHandler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	serveDelete(w, r, h.logger, "Failed to delete question", h.store.DeleteQuestion)
}

// CreateOption handles POST /questions/{id}/options.
func (h *QuestionSetHandler) CreateOption(w http.ResponseWriter, r *http.Request) {
	serveCreate(w, r, h.logger, true, "Failed to create answer option",
		func(ctx context.Context, owner uuid.UUID, questionID int64, req *AnswerOptionRequest) (int64, error) {
			return h.store.CreateOption(ctx, owner, questionID, req.Position, req.AnswerOptionFields)
		})
}

// UpdateOption handles PUT /options/{id}.
func (h *QuestionSetHandler) UpdateOption(w http.ResponseWriter, r *http.Request) {
	serveUpdate(w, r, h.logger, "Failed to update answer option",
		func(ctx context.Context, owner uuid.UUID, id int64, req *AnswerOptionRequest) error {
			return h.store.UpdateOption(ctx, owner, id, req.Position, req.AnswerOptionFields)
		})
}

// DeleteOption handles DELETE /options/{id}.
func (h *QuestionSetHandler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	serveDelete(w, r, h.logger, "Failed to delete answer option", h.store.DeleteOption)
}
