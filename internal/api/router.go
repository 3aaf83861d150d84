package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/99minutos/accounts-api/docs"
	"github.com/99minutos/accounts-api/internal/api/handler"
	"github.com/99minutos/accounts-api/internal/api/metrics"
	"github.com/99minutos/accounts-api/internal/api/middleware"
	"github.com/99minutos/accounts-api/internal/core/ports"
	"github.com/99minutos/accounts-api/internal/core/service"
	"github.com/99minutos/accounts-api/internal/infrastructure/config"
	mongostore "github.com/99minutos/accounts-api/internal/infrastructure/db/mongo"
	redisstore "github.com/99minutos/accounts-api/internal/infrastructure/db/redis"
	"github.com/99minutos/accounts-api/internal/infrastructure/security"
	"github.com/99minutos/accounts-api/pkg/logger"
)

// Dependencies is everything the router needs. Idempotency and Readiness may
// be nil.
type Dependencies struct {
	Users          ports.UserRepository
	Hasher         ports.PasswordHasher
	Tokens         ports.TokenIssuer
	Idempotency    ports.IdempotencyStore
	Readiness      *handler.HealthDependenciesHandler
	AllowedOrigins []string
	EnableSwagger  bool
	Log            zerolog.Logger
	// MetricsRegisterer receives the HTTP request metrics. Defaults to
	// prometheus.DefaultRegisterer.
	MetricsRegisterer prometheus.Registerer
}

func (d Dependencies) metricsRegisterer() prometheus.Registerer {
	if d.MetricsRegisterer != nil {
		return d.MetricsRegisterer
	}
	return prometheus.DefaultRegisterer
}

// NewDependencies builds the production wiring from configuration and live
// clients. rdb may be nil when Redis is not configured.
func NewDependencies(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) Dependencies {
	deps := Dependencies{
		Users:          mongostore.NewUserRepository(db, cfg.Mongo.Timeout),
		Hasher:         security.NewBcryptHasher(cfg.BcryptCost),
		Tokens:         security.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Readiness:      handler.NewHealthDependenciesHandler(db, rdb),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		EnableSwagger:  cfg.IsDevelopment(),
		Log:            log,
	}
	if rdb != nil {
		deps.Idempotency = redisstore.NewIdempotencyStore(rdb, cfg.Redis.IdempotencyTTL)
	}
	return deps
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestContextLogger(deps.Log))
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: deps.AllowedOrigins,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  metrics.Namespace,
		Subsystem:  "http",
		Registerer: deps.metricsRegisterer(),
	}))
	e.Use(middleware.CommitErrors())

	// --- Dependencies ---
	authService := service.NewAuthService(deps.Users, deps.Hasher, deps.Tokens, deps.Idempotency, deps.Log)
	accountService := service.NewAccountService(deps.Users, deps.Log)
	authHandler := handler.NewAuthHandler(authService)
	accountHandler := handler.NewAccountHandler(accountService)
	authGate := middleware.Auth(deps.Tokens)

	// --- Account routes ---
	g := e.Group("/api/auth")
	g.POST("/register", authHandler.Register)
	g.POST("/login", authHandler.Login)
	g.DELETE("/delete/:id", accountHandler.DeleteByID,
		authGate, middleware.SelfOrAdmin("id", middleware.ByUserID))
	g.DELETE("/delete/username/:username", accountHandler.DeleteByUsername,
		authGate, middleware.SelfOrAdmin("username", middleware.ByUsername))

	// --- Operational routes (no auth required) ---
	e.GET("/", handler.Root)
	e.GET("/health", handler.NewHealthHandler().Liveness) // liveness  – is the process alive?
	if deps.Readiness != nil {
		e.GET("/health/ready", deps.Readiness.Readiness) // readiness – are dependencies up?
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if deps.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	return e
}

// requestContextLogger attaches a child logger tagged with the request id to
// the request context.
func requestContextLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			reqLog := log.With().Str("request_id", id).Logger()
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context(), reqLog)))
			return next(c)
		}
	}
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
