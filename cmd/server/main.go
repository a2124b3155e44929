// Package main is the entry point for the painpal server. It reads
// configuration, builds the store and companion client, and hands
// everything to internal/server — all actual logic lives there and below.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"painpal/internal/auth"
	"painpal/internal/companion"
	"painpal/internal/config"
	"painpal/internal/repository"
	"painpal/internal/repository/memory"
	"painpal/internal/repository/sqlite"
	"painpal/internal/server"
)

func main() {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var tokens *auth.TokenService
	if cfg.IdentityJWTSecret != "" {
		tokens, err = auth.NewTokenService(cfg.IdentityJWTSecret)
		if err != nil {
			logger.Error("invalid identity secret", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		logger.Warn("IDENTITY_JWT_SECRET not set — trusting the X-Identity-UID header (development mode)")
	}

	var client companion.Client
	if cfg.OpenAIAPIKey != "" {
		client = companion.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	} else {
		logger.Warn("OPENAI_API_KEY not set — companion endpoints will fail")
		client = companion.Unavailable{}
	}

	srv := server.New(cfg, logger, store, tokens, client)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func openStore(cfg *config.Config, logger *slog.Logger) (repository.Store, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, err
		}
		logger.Info("using sqlite store", slog.String("path", cfg.DBPath))
		return sqlite.New(cfg.DBPath)
	default:
		logger.Info("using in-memory store; data will not survive a restart")
		return memory.New(), nil
	}
}
