// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"ripple/internal/cache"
	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/notifications"
	"ripple/internal/repository"
	"ripple/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// wireableHub is implemented by every WebSocket hub that can be wired to
// Redis pub/sub and gracefully shut down.
type wireableHub interface {
	Name() string
	StartWiring(ctx context.Context, n *notifications.Notifier) error
	Shutdown(ctx context.Context) error
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	userRepo    repository.UserRepository
	followRepo  repository.FollowRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	notiRepo    repository.NotificationRepository
	chatRepo    repository.ChatRepository

	notifier *notifications.Notifier
	hub      *notifications.Hub
	chatHub  *notifications.ChatHub
	hubs     []wireableHub // all hubs for wiring/shutdown iteration

	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService
	notiService    *service.NotificationService
	chatService    *service.ChatService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and
// optionally performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("ripple-api"),
		userRepo:       repository.NewUserRepository(db),
		followRepo:     repository.NewFollowRepository(db),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		notiRepo:       repository.NewNotificationRepository(db),
		chatRepo:       repository.NewChatRepository(db),
	}

	// Hubs exist regardless of Redis; a single instance fans out locally.
	server.hub = notifications.NewHub(redisClient)
	server.chatHub = notifications.NewChatHub()
	server.hubs = []wireableHub{server.hub, server.chatHub}
	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}

	server.notiService = service.NewNotificationService(server.notiRepo, server.notifier)
	server.userService = service.NewUserService(server.userRepo, server.followRepo, server.notiService)
	server.postService = service.NewPostService(
		server.postRepo, server.userRepo, server.notiRepo, server.notiService, server.isStaffByUserID)
	server.commentService = service.NewCommentService(server.commentRepo, server.postRepo, server.notiService)
	server.chatService = service.NewChatService(server.chatRepo, server.userRepo, server.deliverChatFrame)

	return server, nil
}

// deliverChatFrame fans a chat frame out to the channel group. With Redis the
// frame goes through pub/sub so every instance rebroadcasts it; without Redis
// the local hub is the whole deployment.
func (s *Server) deliverChatFrame(ctx context.Context, channel, payload string) {
	if s.notifier != nil {
		if err := s.notifier.PublishChatMessage(ctx, channel, payload); err != nil {
			log.Printf("publish chat frame error: %v", err)
		}
		return
	}
	s.chatHub.Broadcast(channel, payload)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// OpenTelemetry spans for every request
	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on error
	// responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Ripple Backend Metrics Dashboard",
	}))

	// User and auth routes
	users := api.Group("/users")
	users.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	users.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	users.Post("/refresh", s.Refresh)
	users.Post("/logout", middleware.AuthRequired, s.Logout)

	// Specific /u/... and /follow/... routes BEFORE the generic /:username route
	users.Get("/u/search", middleware.AuthRequired, s.SearchUsers)
	users.Get("/reco", middleware.AuthRequired, s.RecommendUsers)
	users.Post("/follow/:username", middleware.AuthRequired, s.ToggleFollow)
	users.Get("/:username", middleware.AuthRequired, s.GetProfile)
	users.Put("/:username", middleware.AuthRequired, s.UpdateProfile)
	users.Patch("/:username", middleware.AuthRequired, s.UpdateProfile)
	users.Delete("/:username", middleware.AuthRequired, s.DeleteProfile)

	// Post routes (all require auth)
	posts := api.Group("/posts", middleware.AuthRequired)
	posts.Get("/", s.GetPosts)
	posts.Post("/", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "create_post"), s.CreatePost)
	// Toggle sets and filtered lists BEFORE the generic /:id routes
	posts.Post("/like/:id", s.ToggleLike)
	posts.Post("/shared/:id", s.ToggleShare)
	posts.Get("/my/:username", s.GetUserPosts)
	posts.Get("/likes/:username", s.GetLikedPosts)
	posts.Get("/shared/:username", s.GetSharedPosts)
	// Comment collection under a post, single comments under /comment
	posts.Get("/comments/:id", s.GetComments)
	posts.Post("/comments/:id", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_comment"), s.CreateComment)
	posts.Get("/comment/:id", s.GetComment)
	posts.Put("/comment/:id", s.UpdateComment)
	posts.Patch("/comment/:id", s.UpdateComment)
	posts.Delete("/comment/:id", s.DeleteComment)
	// Generic /:id routes must be last
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.UpdatePost)
	posts.Patch("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	// Notification routes
	noti := api.Group("/noti", middleware.AuthRequired)
	noti.Get("/", s.GetReadNotifications)
	noti.Get("/no", s.GetUnreadNotifications)
	noti.Get("/count", s.GetUnreadCount)
	noti.Put("/leer", s.MarkNotificationsRead)

	// Chat history
	chat := api.Group("/chat", middleware.AuthRequired)
	chat.Get("/canal/:username", s.GetChatHistory)

	// Websocket endpoints - token accepted via query param for browser clients
	ws := api.Group("/ws", middleware.WebSocketAuthRequired)
	ws.Get("/", s.WebsocketHandler())                   // General notifications
	ws.Get("/chat/:username", s.WebSocketChatHandler()) // Direct chat
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
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Without Redis the instance serves traffic but loses cross-instance
		// fan-out and token revocation.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Ripple API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	// Wire all hubs to Redis subscriber if available
	if s.notifier != nil {
		for _, h := range s.hubs {
			h := h
			go func() {
				if err := h.StartWiring(s.shutdownCtx, s.notifier); err != nil {
					log.Printf("failed to start %s wiring: %v", h.Name(), err)
				}
			}()
		}
	}

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop all wiring goroutines
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	// Shutdown the HTTP/WS server
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Close WebSocket connections gracefully
	for _, h := range s.hubs {
		if err := h.Shutdown(ctx); err != nil {
			log.Printf("error shutting down %s: %v", h.Name(), err)
		}
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
