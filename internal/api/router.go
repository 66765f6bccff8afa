package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/identity-service/docs"
	"github.com/99minutos/identity-service/internal/api/handler"
	"github.com/99minutos/identity-service/internal/api/metrics"
	"github.com/99minutos/identity-service/internal/api/middleware"
	"github.com/99minutos/identity-service/internal/core/ports"
)

// Deps carries everything NewRouter wires into the HTTP surface.
type Deps struct {
	Accounts      ports.AccountService
	Authenticator ports.Authenticator
	JWTSecret     string

	// Readiness lists the dependencies checked by /health/ready.
	Readiness map[string]ports.Pinger

	Logger    zerolog.Logger
	LogBodies middleware.BodyLogConfig

	// Registerer and Gatherer default to the Prometheus default registry.
	// Both the HTTP and the identity_* metrics go to Registerer.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	if d.Registerer == nil {
		d.Registerer = prometheus.DefaultRegisterer
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(middleware.BodyLogger(d.Logger, d.LogBodies))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: d.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	m := metrics.New(d.Registerer)

	// --- Account routes ---
	accounts := handler.NewAccountHandler(d.Accounts, m, d.Logger)
	auth := middleware.Auth(middleware.AuthConfig{
		Authenticator: d.Authenticator,
		JWTSecret:     d.JWTSecret,
		Metrics:       m,
		Logger:        d.Logger,
	})
	requireCaller := middleware.RequireCaller()

	// Registration is open to anyone and never looks at credentials.
	e.POST("/v1/api/users/register", accounts.Register)

	users := e.Group("/v1/api/users", auth)
	users.GET("", accounts.List, requireCaller)
	users.GET("/:username", accounts.Fetch, requireCaller)
	users.DELETE("/:username", accounts.Remove, requireCaller)

	e.GET("/version", handler.Version)

	// --- Health checks (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Readiness)

	e.GET("/health", healthHandler.Liveness)            // liveness
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: d.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
