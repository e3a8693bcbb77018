package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/odinbook/backend/internal/blobstore"
	"github.com/anonto42/odinbook/backend/internal/handlers"
	"github.com/anonto42/odinbook/backend/internal/metrics"
	"github.com/anonto42/odinbook/backend/internal/router"
	"github.com/anonto42/odinbook/backend/internal/tokens"
	"github.com/anonto42/odinbook/backend/pkg/config"
	"github.com/anonto42/odinbook/backend/pkg/firebase"
	"github.com/anonto42/odinbook/backend/pkg/logger"
	"github.com/anonto42/odinbook/backend/validators"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connections
	db, err := config.InitDB(cfg, zl)
	if err != nil {
		return err
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	blobs, err := newBlobStore(ctx, cfg, db)
	if err != nil {
		return err
	}

	codec, err := tokens.NewCodec(tokens.Config{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.JWTAccessTTL,
		RefreshTTL:    cfg.JWTRefreshTTL,
		Issuer:        "odinbook",
	})
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validators.NewValidator()
	e.HTTPErrorHandler = handlers.HTTPErrorHandler(zl)

	// Setup global middleware
	router.SetupMiddleware(e, cfg, zl)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, router.Dependencies{
		Config: cfg,
		DB:     db.Postgres,
		Tokens: codec,
		Blobs:  blobs,
		Logger: zl,
	}); err != nil {
		return err
	}

	metricsSrv := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metricsMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zl.Info("metrics server listening", zap.String("addr", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("metrics server failed", zap.Error(err))
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		zl.Info("api server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		zl.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("api server shutdown", zap.Error(err))
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		zl.Error("metrics server shutdown", zap.Error(err))
	}
	zl.Info("server stopped")
	return nil
}

func newBlobStore(ctx context.Context, cfg *config.Config, db *config.DB) (blobstore.Store, error) {
	switch cfg.BlobBackend {
	case config.BlobBackendFirebase:
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseStorageBucket)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Firebase: %w", err)
		}
		return blobstore.NewFirebaseStore(app.Bucket, app.BucketName), nil
	default:
		return blobstore.NewGridFSStore(db.Mongo.Database(cfg.MongoDatabase), cfg.MediaBaseURL)
	}
}

func metricsMux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}
