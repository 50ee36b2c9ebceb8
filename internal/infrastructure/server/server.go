package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/productivitybrain/core/docs"
	httpHandlers "github.com/productivitybrain/core/internal/adapters/http"
	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/infrastructure/config"
	"github.com/productivitybrain/core/internal/infrastructure/database"
	"github.com/productivitybrain/core/internal/infrastructure/logger"
	"github.com/productivitybrain/core/internal/infrastructure/metrics"
	"github.com/productivitybrain/core/internal/ports"
)

const eventsPath = "/api/v1/events"

// StoreBackend is what the server needs from the store beyond ports.Store
type StoreBackend interface {
	ports.Store
	httpHandlers.ChangeFeed
	Health() ports.StoreHealth
	Ping(ctx context.Context) error
}

// Dependencies are the application services the server exposes
type Dependencies struct {
	Store      StoreBackend
	Tools      *registry.Tools
	Components *registry.Components
	Auth       ports.DispatchAuthService
	Metrics    *metrics.Metrics
	// DB is set only for the sqlite and postgres drivers
	DB *database.DB
}

// Server represents the HTTP server
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *logger.Logger
	deps   Dependencies
}

// New creates a new server instance
func New(cfg *config.Config, deps Dependencies, appLogger *logger.Logger) (*Server, error) {
	if deps.Store == nil || deps.Tools == nil || deps.Components == nil || deps.Auth == nil {
		return nil, errors.New("server requires a store, registries and an auth service")
	}

	e := echo.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger.WithComponent("server"),
		deps:   deps,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup metrics
	if cfg.Metrics.Enabled && deps.Metrics != nil {
		server.setupMetrics()
	}

	// Setup routes
	server.setupRoutes()

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			log := s.logger.WithRequestID(values.RequestID)
			if subject := subjectFromContext(c); subject != "" {
				log = log.WithFields("subject", subject)
			}
			log.LogHTTPRequest(
				values.Method,
				values.URI,
				values.UserAgent,
				values.RemoteIP,
				values.Status,
				float64(values.Latency.Nanoseconds())/1000000,
				values.Error,
			)
			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.allowedOrigins(),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.POST},
	}))

	// Rate limiting middleware
	if s.config.Security.RateLimitRequests > 0 {
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Skipper: func(c echo.Context) bool {
				return !strings.HasPrefix(c.Request().URL.Path, "/api/")
			},
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{
					Rate:      s.requestRate(),
					Burst:     s.config.Security.RateLimitRequests,
					ExpiresIn: s.config.Security.RateLimitWindow,
				},
			),
			IdentifierExtractor: func(ctx echo.Context) (string, error) {
				id := ctx.RealIP()
				return id, nil
			},
			ErrorHandler: func(context echo.Context, err error) error {
				return context.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
			},
			DenyHandler: func(context echo.Context, identifier string, err error) error {
				s.logger.LogSecurityEvent("rate_limited", identifier, map[string]interface{}{
					"endpoint": context.Request().URL.Path,
				})
				return context.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
			},
		}))
	}

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/docs")
		},
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
	}))

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Timeout middleware; the event stream is long lived and hijacks the connection
	if s.config.Server.RequestTimeout > 0 {
		s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
			Skipper: func(c echo.Context) bool {
				return c.Request().URL.Path == eventsPath
			},
			Timeout: s.config.Server.RequestTimeout,
		}))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation
	s.echo.GET("/docs/*", echoSwagger.WrapHandler)
	s.echo.GET("/swagger", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})

	toolHandler := httpHandlers.NewToolHandler(s.deps.Tools, s.logger)
	componentHandler := httpHandlers.NewComponentHandler(s.deps.Components, s.logger)
	contextHandler := httpHandlers.NewContextHandler(s.deps.Store)
	eventHandler := httpHandlers.NewEventHandler(s.deps.Store, s.allowedOrigins(), s.logger)

	// API v1 routes
	v1 := s.echo.Group("/api/v1", s.authMiddleware(s.deps.Auth))

	v1.GET("/tools", toolHandler.ListTools)
	v1.POST("/tools/:name", toolHandler.CallTool)

	v1.GET("/components", componentHandler.ListComponents)
	v1.POST("/components/:name/render", componentHandler.RenderComponent)
	v1.POST("/components/:name/actions/:action", componentHandler.RunAction)

	v1.GET("/context", contextHandler.GetContext)
	v1.GET("/events", eventHandler.Stream)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	s.echo.Use(s.deps.Metrics.Middleware())

	// Metrics endpoint
	s.echo.GET("/metrics", echo.WrapHandler(s.deps.Metrics.Handler()))
}

func (s *Server) allowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(s.config.Security.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// requestRate spreads the configured request budget over its window
func (s *Server) requestRate() rate.Limit {
	window := s.config.Security.RateLimitWindow
	if window <= 0 {
		return rate.Limit(s.config.Security.RateLimitRequests)
	}
	return rate.Limit(float64(s.config.Security.RateLimitRequests) / window.Seconds())
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	status := "ok"
	checks := make(map[string]interface{})

	// A degraded store still serves reads, so it does not fail the check
	health := s.deps.Store.Health()
	storeStatus := "ok"
	if health.Degraded {
		storeStatus = "degraded"
		status = "degraded"
	}
	checks["store"] = map[string]interface{}{
		"status": storeStatus,
		"driver": s.config.Storage.Driver,
		"health": health,
	}

	if err := s.deps.Store.Ping(ctx); err != nil {
		status = "error"
		checks["backend"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["backend"] = map[string]interface{}{"status": "ok"}
	}

	if s.deps.DB != nil {
		if err := s.deps.DB.HealthCheck(ctx); err != nil {
			status = "error"
			checks["database"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		} else {
			checks["database"] = map[string]interface{}{
				"status": "ok",
				"stats":  s.deps.DB.GetConnectionInfo(),
			}
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"auth":   s.deps.Auth.Enabled(),
		"version": map[string]string{
			"app": s.config.App.Version,
			"go":  runtime.Version(),
		},
	}

	if status == "error" {
		return c.JSON(http.StatusServiceUnavailable, response)
	}
	return c.JSON(http.StatusOK, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	// Check if server is ready to accept requests
	if err := s.deps.Store.Ping(c.Request().Context()); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "storage_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Address is the configured listen address
func (s *Server) Address() string {
	return net.JoinHostPort(s.config.Server.Host, strconv.Itoa(s.config.Server.Port))
}

// ServeHTTP lets the server be driven directly, mainly by tests
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start starts the HTTP server. It returns nil after a graceful shutdown.
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			switch m := he.Message.(type) {
			case string:
				msg = httpHandlers.ErrorResponse{Message: m}
			case error:
				msg = httpHandlers.ErrorResponse{Message: m.Error()}
			default:
				msg = m
			}
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else {
			msg = httpHandlers.ErrorResponse{Message: http.StatusText(code)}
		}

		if code >= http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		// Send response
		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Errorw("Error sending response", "error", err)
			}
		}
	}
}
