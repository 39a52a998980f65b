// Package server contains the HTTP and WebSocket handlers for the vidtube API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "vidtube/docs" // swagger docs
	"vidtube/internal/auth"
	"vidtube/internal/cache"
	"vidtube/internal/config"
	"vidtube/internal/database"
	"vidtube/internal/featureflags"
	"vidtube/internal/media"
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/repository"
	"vidtube/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	featureFlags   *featureflags.Set
	issuer         *auth.Issuer
	notifier       *notifications.Notifier
	hub            *notifications.Hub

	userRepo repository.UserRepository

	userService         *service.UserService
	videoService        *service.VideoService
	commentService      *service.CommentService
	likeService         *service.LikeService
	tweetService        *service.TweetService
	subscriptionService *service.SubscriptionService
	playlistService     *service.PlaylistService
	dashboardService    *service.DashboardService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	ctx := context.Background()
	rdb := cache.Connect(ctx, cfg.RedisURL)

	store, err := media.NewS3Store(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("media storage init failed: %w", err)
	}
	flags := featureflags.Parse(cfg.FeatureFlags)
	relay := media.NewRelay(store, media.PublicBaseURL(cfg), func() bool {
		return flags.On(featureflags.WebPImages)
	})

	return NewServerWithDeps(cfg, db, rdb, relay)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use it with SQLite, miniredis and an in-memory media store.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, mediaStore service.MediaStore) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	tweetRepo := repository.NewTweetRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	playlistRepo := repository.NewPlaylistRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("vidtube-api"),
		featureFlags:   featureflags.Parse(cfg.FeatureFlags),
		issuer:         auth.NewIssuer(auth.SettingsFromConfig(cfg), userRepo, redisClient),
		userRepo:       userRepo,
	}

	// Without Redis events are dropped and the socket endpoint stays closed.
	var events service.EventPublisher
	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.hub = notifications.NewHub()
		events = server.notifier
	}

	server.userService = service.NewUserService(userRepo, server.issuer, mediaStore)
	server.videoService = service.NewVideoService(videoRepo, mediaStore)
	server.commentService = service.NewCommentService(commentRepo, videoRepo, events)
	server.likeService = service.NewLikeService(likeRepo, videoRepo, commentRepo, tweetRepo, events)
	server.tweetService = service.NewTweetService(tweetRepo, userRepo)
	server.subscriptionService = service.NewSubscriptionService(subRepo, userRepo, events)
	server.playlistService = service.NewPlaylistService(playlistRepo, videoRepo)
	server.dashboardService = service.NewDashboardService(dashboardRepo, videoRepo, userRepo)

	return server, nil
}

// NewApp builds the Fiber app with middleware and routes but does not listen.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "vidtube API",
		BodyLimit:    s.config.UploadMaxSizeMB * 1024 * 1024,
		ErrorHandler: models.RespondWithError,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.NewAppError(fiber.StatusTooManyRequests, "Too many requests, please try again later")
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")
	api.Get("/health-check", s.HealthCheck)

	users := api.Group("/users")
	users.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	users.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	users.Post("/refresh-token", middleware.RateLimit(s.redis, 30, 5*time.Minute, "refresh"), s.RefreshToken)
	users.Post("/logout", s.AuthRequired(), s.Logout)
	users.Patch("/change-password", s.AuthRequired(), s.ChangePassword)
	users.Get("/my-profile", s.AuthRequired(), s.GetMyProfile)
	users.Patch("/update-profile", s.AuthRequired(), s.UpdateProfile)
	users.Patch("/update-avatar", s.AuthRequired(), s.UpdateAvatar)
	users.Patch("/update-cover-image", s.AuthRequired(), s.UpdateCoverImage)
	users.Get("/channel/:username", s.AuthRequired(), s.GetChannelProfile)
	users.Get("/watch-history", s.AuthRequired(), s.GetWatchHistory)

	videos := api.Group("/videos", s.AuthRequired())
	videos.Get("/", s.ListVideos)
	videos.Post("/", s.PublishVideo)
	// Specific prefixes before the generic /:videoId routes
	videos.Patch("/view/:videoId", s.ViewVideo)
	videos.Patch("/toggle-publish-status/:videoId", s.TogglePublishStatus)
	videos.Get("/:videoId", s.GetVideo)
	videos.Patch("/:videoId", s.UpdateVideo)
	videos.Delete("/:videoId", s.DeleteVideo)

	comments := api.Group("/comments", s.AuthRequired())
	comments.Patch("/c/:commentId", s.UpdateComment)
	comments.Delete("/c/:commentId", s.DeleteComment)
	comments.Get("/:videoId", s.GetVideoComments)
	comments.Post("/:videoId", middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateComment)

	likes := api.Group("/likes", s.AuthRequired())
	likes.Post("/toggle/v/:videoId", s.ToggleVideoLike)
	likes.Post("/toggle/c/:commentId", s.ToggleCommentLike)
	likes.Post("/toggle/t/:tweetId", s.ToggleTweetLike)
	likes.Get("/videos", s.GetLikedVideos)
	likes.Get("/comments", s.GetLikedComments)
	likes.Get("/tweets", s.GetLikedTweets)

	tweets := api.Group("/tweets", s.AuthRequired())
	tweets.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "create_tweet"), s.CreateTweet)
	tweets.Get("/user/:username", s.GetUserTweets)
	tweets.Patch("/:tweetId", s.UpdateTweet)
	tweets.Delete("/:tweetId", s.DeleteTweet)

	subs := api.Group("/subscriptions", s.AuthRequired())
	subs.Post("/c/:channelId", s.ToggleSubscription)
	subs.Get("/c/:channelId", s.GetChannelSubscribers)
	subs.Get("/u/:subscriberId", s.GetSubscribedChannels)

	playlists := api.Group("/playlists", s.AuthRequired())
	playlists.Post("/", s.CreatePlaylist)
	playlists.Patch("/add/:videoId/:playlistId", s.AddVideoToPlaylist)
	playlists.Patch("/remove/:videoId/:playlistId", s.RemoveVideoFromPlaylist)
	playlists.Get("/user/:userId", s.GetUserPlaylists)
	playlists.Get("/:playlistId", s.GetPlaylist)
	playlists.Patch("/:playlistId", s.UpdatePlaylist)
	playlists.Delete("/:playlistId", s.DeletePlaylist)

	dashboard := api.Group("/dashboard", s.AuthRequired())
	dashboard.Get("/stats", s.GetChannelStats)
	dashboard.Get("/videos", s.GetChannelVideos)

	api.Get("/ws", s.AuthRequired(), s.WebsocketHandler())
}

// HealthCheck handles GET /api/v1/health-check
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} models.APIResponse
// @Router /health-check [get]
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return models.OK(c, "success", "API is up and running")
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app, wires the notification hub and listens until shutdown.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.hub != nil {
		go func() {
			if err := s.hub.Start(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start notification hub", slog.String("error", err.Error()))
			}
		}()
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		s.hub.Shutdown()
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
