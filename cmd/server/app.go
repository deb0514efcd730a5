package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hangeul-lab/authoring/internal/config"
	"github.com/hangeul-lab/authoring/internal/platform/postgres"
	"github.com/hangeul-lab/authoring/internal/service/auth"
	"github.com/hangeul-lab/authoring/internal/store"
)

// application holds the shared dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	questionSetStore store.QuestionSetStore
	vocabularyStore  store.VocabularyStore
	classStore       store.ClassStore
	postStore        store.PostStore

	jwtService auth.JWTService
}

// newApplication creates the stores and services on top of db.
func newApplication(_ context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("session token validation initialized",
		"session_cookie", cfg.Auth.SessionCookie,
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	return &application{
		config:           cfg,
		logger:           logger,
		db:               db,
		questionSetStore: postgres.NewPostgresQuestionSetStore(db, logger),
		vocabularyStore:  postgres.NewPostgresVocabularyStore(db, logger),
		classStore:       postgres.NewPostgresClassStore(db, logger),
		postStore:        postgres.NewPostgresPostStore(db, logger),
		jwtService:       jwtService,
	}, nil
}
