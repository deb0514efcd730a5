// Package main runs the Hangeul Lab authoring API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/hangeul-lab/authoring/internal/config"
	"github.com/hangeul-lab/authoring/internal/platform/logger"
	"github.com/hangeul-lab/authoring/internal/service/auth"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (default: ./config.yaml if present)")
	issueToken := flag.String("issue-token", "", "print a session token for the given user id and exit")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if *issueToken != "" {
		if err := printToken(cfg, *issueToken); err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// run wires the application and serves until ctx is canceled.
func run(ctx context.Context, cfg *config.Config) error {
	log, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"auto_migrate", cfg.Database.AutoMigrate)

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()

	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		return err
	}
	return app.startHTTPServer(ctx, app.setupRouter())
}

// printToken writes a session token for local development to stdout.
func printToken(cfg *config.Config, rawID string) error {
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", rawID, err)
	}
	svc, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return err
	}
	token, err := svc.GenerateToken(context.Background(), userID)
	if err != nil {
		return err
	}
	fmt.Printf("%s=%s\n", cfg.Auth.SessionCookie, token)
	return nil
}
