package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/shorlog-studio/internal/ai"
	"github.com/shorlog-studio/internal/api"
	"github.com/shorlog-studio/internal/auth"
	"github.com/shorlog-studio/internal/cache"
	"github.com/shorlog-studio/internal/config"
	"github.com/shorlog-studio/internal/database"
	"github.com/shorlog-studio/internal/repository"
	"github.com/shorlog-studio/internal/service"
	"github.com/shorlog-studio/internal/storage"
	"github.com/shorlog-studio/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting shorlog studio API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.Server.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	repos := repository.New(db)
	store := storage.NewLocalStore(cfg.Upload, log)

	deps := service.Dependencies{
		Repos: repos,
		Store: store,
	}

	// Suggestions work without redis, just uncached
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedis(context.Background(), cfg.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("Suggestion cache disabled")
		} else {
			defer rc.Close()
			deps.Cache = rc
		}
	}

	if cfg.AI.Enabled() {
		deps.Generator = ai.NewGeminiGenerator(cfg.AI, log)
		log.Info().Str("model", cfg.AI.Model).Int("keys", len(cfg.AI.APIKeys)).Msg("AI assistant enabled")
	} else {
		log.Warn().Msg("GEMINI_API_KEYS not set, AI suggestions disabled")
	}

	services := service.NewServices(deps, cfg, log)
	authSvc := auth.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Start orphan image cleanup
	go services.Janitor.StartProcessor(context.Background())

	router := api.NewRouter(services, cfg, authSvc, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	services.Janitor.StopProcessor()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
