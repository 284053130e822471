package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/connectly/support-api/docs"
	"github.com/connectly/support-api/internal/api/handler"
	"github.com/connectly/support-api/internal/api/middleware"
	"github.com/connectly/support-api/internal/core/domain"
	"github.com/connectly/support-api/internal/core/ports"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	Logger      zerolog.Logger
	AuthService ports.AuthService
	ChatService ports.ChatService
	Tokens      middleware.TokenVerifier

	// Redis backs the auth rate limiter when set.
	Redis *redis.Client
	// Checks are run by the readiness probe.
	Checks map[string]handler.Checker

	CORSAllowedOrigin string
	BodyLimit         string
	RateLimitAuth     int
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	if deps.BodyLimit == "" {
		deps.BodyLimit = "10M"
	}
	if deps.RateLimitAuth <= 0 {
		deps.RateLimitAuth = 10
	}

	// HTTP metrics go to a registry owned by this router; /metrics serves it
	// together with the process-wide default registry.
	reg := prometheus.NewRegistry()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{deps.CORSAllowedOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.BodyLimit(deps.BodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "connectly",
		Registerer: reg,
	}))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	chatHandler := handler.NewChatHandler(deps.ChatService)
	healthHandler := handler.NewHealthHandler(deps.Checks, deps.Logger)
	requireAuth := middleware.Auth(deps.Tokens)
	authLimiter := middleware.NewRateLimiter(deps.Redis, "auth", deps.RateLimitAuth, deps.Logger)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: prometheus.Gatherers{prometheus.DefaultGatherer, reg},
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register, authLimiter.Middleware())
	auth.POST("/login", authHandler.Login, authLimiter.Middleware())
	auth.GET("/profile", authHandler.Profile, requireAuth)
	auth.POST("/verify", authHandler.Verify, requireAuth)
	auth.GET("/users", authHandler.ListUsers, requireAuth, middleware.RequireRole(domain.RoleAdmin))

	// --- Chat routes ---
	chats := e.Group("/chats", requireAuth)
	chats.GET("", chatHandler.ListChats)
	chats.GET("/:chatId/messages", chatHandler.ListMessages)
	chats.POST("/:chatId/messages", chatHandler.SendMessage)

	return e
}
