package router

import (
	"fmt"

	"github.com/anonto42/odinbook/backend/internal/blobstore"
	"github.com/anonto42/odinbook/backend/internal/handlers"
	"github.com/anonto42/odinbook/backend/internal/metrics"
	"github.com/anonto42/odinbook/backend/internal/middleware"
	"github.com/anonto42/odinbook/backend/internal/repositories"
	"github.com/anonto42/odinbook/backend/internal/services"
	"github.com/anonto42/odinbook/backend/internal/tokens"
	"github.com/anonto42/odinbook/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the process-wide resources routes are built from.
type Dependencies struct {
	Config *config.Config
	DB     *gorm.DB
	Tokens *tokens.Codec
	Blobs  blobstore.Store
	Logger *zap.Logger
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg *config.Config, logger *zap.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORSWithConfig(cfg.CORSConfig()))
	e.Use(eMiddleware.BodyLimit("6M"))
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("path", v.URIPath),
				zap.String("route", v.RoutePath),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			)
			return nil
		},
	}))
	// innermost, so the status it records is the rendered one
	e.Use(metrics.Middleware())
	logger.Debug("global middleware configured")
}

// SetupRoutes migrates the schema, wires repositories, services and handlers,
// and mounts every route.
func SetupRoutes(e *echo.Echo, deps Dependencies) error {
	cfg, logger := deps.Config, deps.Logger

	if err := repositories.Migrate(deps.DB); err != nil {
		return fmt.Errorf("auto migrate models: %w", err)
	}
	logger.Info("schema migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.DB)
	followRepo := repositories.NewPostgresFollowRepository(deps.DB)
	postRepo := repositories.NewPostgresPostRepository(deps.DB)
	likeRepo := repositories.NewPostgresLikeRepository(deps.DB)
	commentRepo := repositories.NewPostgresCommentRepository(deps.DB)

	// --- Services ---
	authSvc, err := services.NewAuthService(userRepo, deps.Tokens, cfg.BcryptCost, logger)
	if err != nil {
		return fmt.Errorf("auth service: %w", err)
	}
	annotator := services.NewPostAnnotator(userRepo, likeRepo, commentRepo)
	followSvc := services.NewFollowService(followRepo, userRepo, cfg.FollowAutoAccept)
	feedSvc := services.NewFeedService(followSvc, postRepo, annotator, services.NewCursorCodec(cfg.FeedCursorSecret))
	postSvc := services.NewPostService(postRepo, annotator)
	commentSvc := services.NewCommentService(commentRepo, postRepo, userRepo)
	likeSvc := services.NewLikeService(likeRepo, postRepo)
	userSvc := services.NewUserService(userRepo, followSvc, deps.Blobs, logger)

	requireAuth := middleware.RequireSession(deps.Tokens)
	optionalAuth := middleware.OptionalSession(deps.Tokens)

	cookies := handlers.CookieConfig{
		Secure:     cfg.SecureCookies(),
		SameSite:   cfg.SameSite(),
		AccessTTL:  cfg.JWTAccessTTL,
		RefreshTTL: cfg.JWTRefreshTTL,
	}

	api := e.Group("/api")

	// --- Auth ---
	handlers.NewAuthHandler(authSvc, cookies).
		RegisterAuthRoutes(api.Group("/auth"), cfg.AuthRateLimiter(), requireAuth)

	// --- Public reads with optional session ---
	handlers.NewPostHandler(postSvc, feedSvc).RegisterPostRoutes(api.Group("/posts"), requireAuth, optionalAuth)
	handlers.NewCommentHandler(commentSvc).RegisterCommentRoutes(api.Group("/comments"), requireAuth)

	// --- Session required ---
	handlers.NewFeedHandler(feedSvc).RegisterFeedRoutes(api.Group("/feed", requireAuth))
	handlers.NewLikeHandler(likeSvc).RegisterLikeRoutes(api.Group("/likes", requireAuth))
	handlers.NewFollowHandler(followSvc).RegisterFollowRoutes(api.Group("/follows", requireAuth))
	handlers.NewUserHandler(userSvc, followSvc).RegisterUserRoutes(api.Group("/users", requireAuth))

	// --- Media, when the blob backend can be read back ---
	if opener, ok := deps.Blobs.(blobstore.Opener); ok {
		handlers.NewMediaHandler(opener).RegisterMediaRoutes(e.Group("/media"))
	}

	logger.Info("all routes configured", zap.Int("routes", len(e.Routes())))
	return nil
}
