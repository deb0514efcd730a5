package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/hangeul-lab/authoring/internal/api"
	apiMiddleware "github.com/hangeul-lab/authoring/internal/api/middleware"
	"github.com/hangeul-lab/authoring/internal/api/shared"
)

// pinger is the part of *sql.DB the health check needs.
type pinger interface {
	PingContext(ctx context.Context) error
}

// setupRouter builds the router with middleware and every API route.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.Trace(app.logger))
	r.Use(middleware.Recoverer)
	r.Use(newCORS(app.config.Server.AllowedOrigins).Handler)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService, app.config.Auth.SessionCookie)
	handlers := []interface{ Routes(chi.Router) }{
		api.NewQuestionSetHandler(app.questionSetStore, app.logger),
		api.NewVocabularyHandler(app.vocabularyStore, app.logger),
		api.NewClassHandler(app.classStore, app.logger),
		api.NewPostHandler(app.postStore, app.logger),
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		for _, h := range handlers {
			h.Routes(r)
		}
	})

	r.Get("/health", healthHandler(app.db))
	return r
}

// newCORS allows the web and app origins to call the API with the session
// cookie.
func newCORS(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", apiMiddleware.TraceHeader},
		ExposedHeaders:   []string{apiMiddleware.TraceHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// healthHandler reports whether the database answers.
func healthHandler(db pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusServiceUnavailable, api.CodeInternal, "Database unavailable", err)
			return
		}
		shared.RespondWithData(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
