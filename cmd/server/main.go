// Command server runs the ApplicationTrack HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/applicationtrack/applicationtrack-backend/internal/ai"
	"github.com/applicationtrack/applicationtrack-backend/internal/config"
	httpapi "github.com/applicationtrack/applicationtrack-backend/internal/http"
	"github.com/applicationtrack/applicationtrack-backend/internal/observability"
	"github.com/applicationtrack/applicationtrack-backend/internal/repo"
	"github.com/applicationtrack/applicationtrack-backend/internal/sysutil"
)

var version = "dev"

// @title           ApplicationTrack API
// @version         1.0
// @description     Personal job-application tracker: applications, status transitions, reminders, statistics, documents, and an AI assistant.
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelShutdown, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("opentelemetry setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	var assistant ai.Assistant
	if cfg.GeminiAPIKey != "" {
		model := sysutil.FirstNonEmpty(cfg.GeminiModel, ai.DefaultModel)
		g, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, model)
		if err != nil {
			log.Fatal().Err(err).Msg("gemini client setup failed")
		}
		assistant = g
		log.Info().Str("model", model).Msg("assistant: gemini")
	} else {
		assistant = ai.Template{}
		log.Info().Msg("assistant: template fallback (no GEMINI_API_KEY)")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, assistant, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if err := otelShutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("opentelemetry shutdown failed")
	}
	log.Info().Msg("stopped")
}
