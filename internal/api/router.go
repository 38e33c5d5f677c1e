package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/gatehouse/identity-service/docs"
	"github.com/gatehouse/identity-service/internal/api/handler"
	"github.com/gatehouse/identity-service/internal/api/middleware"
	"github.com/gatehouse/identity-service/internal/core/ports"
)

// Deps carries everything the router needs. Mongo and Redis may be nil
// when the service runs against the in-memory store.
type Deps struct {
	AuthService   ports.AuthService
	Guard         middleware.Guard
	SessionCookie string
	Mongo         *mongo.Database
	Redis         *redis.Client
	Log           zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))
	e.Use(middleware.RequireUser(deps.Guard))

	authHandler := handler.NewAuthHandler(deps.AuthService, deps.SessionCookie)

	// --- Auth routes ---
	e.GET("/", authHandler.Welcome)
	e.POST("/users", authHandler.Register)
	e.POST("/sessions", authHandler.Login)
	e.DELETE("/sessions", authHandler.Logout)
	e.GET("/profile", authHandler.Profile)
	e.POST("/reset_password", authHandler.RequestReset)
	e.PUT("/reset_password", authHandler.UpdatePassword)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
