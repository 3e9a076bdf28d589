package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/pressly/goose/v3"

	"github.com/schoolregistry/server/internal/auth"
	"github.com/schoolregistry/server/internal/config"
	"github.com/schoolregistry/server/internal/db"
	httphandler "github.com/schoolregistry/server/internal/http"
	"github.com/schoolregistry/server/internal/http/handlers"
	"github.com/schoolregistry/server/internal/notify"
	"github.com/schoolregistry/server/internal/repo"
	"github.com/schoolregistry/server/internal/storage"
)

func main() {
	_ = godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx := context.Background()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := runMigrations(database); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	otpRepo := repo.NewOtpRepo(database)
	userRepo := repo.NewUserRepo(database)
	schoolRepo := repo.NewSchoolRepo(database)

	mailer, err := notify.NewSMTPMailer(cfg)
	if err != nil {
		logger.Error("failed to configure mailer", "error", err)
		os.Exit(1)
	}

	var images storage.ImageStore
	if cfg.S3Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, cfg)
		if err != nil {
			logger.Error("failed to configure image storage", "error", err)
			os.Exit(1)
		}
		images = s3Store
	} else {
		logger.Warn("S3_BUCKET not set; school image uploads disabled")
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.SessionTTL)
	admin := auth.NewAdminChecker(cfg.AdminEmail)
	authService := auth.NewService(otpRepo, userRepo, tokens, admin, mailer, cfg.OTPExpiry)

	authHandler := handlers.NewAuthHandler(authService, logger, cfg.SessionTTL, !cfg.DevMode)
	schoolsHandler := handlers.NewSchoolsHandler(schoolRepo, images, logger)

	router := httphandler.NewRouter(logger, authHandler, schoolsHandler, tokens, admin)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited")
}

// setupLogger configures the slog logger per config.
func setupLogger(level, format string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{Level: logLevel})
	}
	return slog.New(handler)
}

// runMigrations runs database migrations using goose
func runMigrations(database *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	migrationDir := "internal/db/migrations"
	if info, err := os.Stat(migrationDir); err != nil || !info.IsDir() {
		return fmt.Errorf("migrations directory not found (run from the repo root)")
	}

	if err := goose.Up(database, migrationDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
