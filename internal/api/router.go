package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cardvault/card-service/internal/api/handler"
	"github.com/cardvault/card-service/internal/api/middleware"
	"github.com/cardvault/card-service/internal/core/domain"
	"github.com/cardvault/card-service/internal/core/service"
	"github.com/cardvault/card-service/internal/infrastructure/config"
	mongostore "github.com/cardvault/card-service/internal/infrastructure/db/mongo"
	redisstore "github.com/cardvault/card-service/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("cards"))

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Dependencies ---
	userRepo := mongostore.NewUserRepository(db)
	cardRepo := mongostore.NewCardRepository(db)
	throttle := redisstore.NewLoginThrottle(rdb, cfg.Throttle.MaxFailures, cfg.Throttle.Window)

	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	authService := service.NewAuthService(userRepo, tokenService, throttle, log)
	userService := service.NewUserService(userRepo, log)
	cardService := service.NewCardService(cardRepo, userRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	adminCardHandler := handler.NewAdminCardHandler(cardService)
	userCardHandler := handler.NewUserCardHandler(cardService)
	healthHandler := handler.NewHealthHandler(db, rdb)

	authRequired := middleware.Auth(tokenService)

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Auth routes ---
	e.POST("/v1/auth/login", authHandler.Login)
	e.POST("/v1/auth/refresh", authHandler.Refresh)

	// --- Admin routes ---
	admin := e.Group("/v1/admin", authRequired, middleware.RBAC(domain.RoleAdmin))
	admin.POST("/users", userHandler.Create)
	admin.GET("/users", userHandler.List)
	admin.GET("/users/:id", userHandler.Get)
	admin.DELETE("/users/:id", userHandler.Delete)
	admin.POST("/cards/:userId", adminCardHandler.Create)
	admin.GET("/cards", adminCardHandler.List)
	admin.GET("/cards/:id", adminCardHandler.Get)
	admin.PATCH("/cards/:id/status", adminCardHandler.SetStatus)
	admin.DELETE("/cards/:id", adminCardHandler.Delete)

	// --- Card holder routes ---
	users := e.Group("/v1/users", authRequired, middleware.RBAC(domain.RoleUser))
	users.GET("/cards", userCardHandler.List)
	users.GET("/cards/:id", userCardHandler.Get)
	users.POST("/cards/:id/block", userCardHandler.RequestBlock)
	users.POST("/cards/transfer", userCardHandler.Transfer)

	return e
}
