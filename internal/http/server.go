// Package http exposes the operation boundary over a local HTTP listener.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"github.com/allisson/keyvault/internal/operation"
)

// ReadinessProbe reports whether the vault can serve requests.
type ReadinessProbe func(ctx context.Context) error

// RouterConfig holds the optional middleware settings of the operations router.
type RouterConfig struct {
	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int

	CORSEnabled      bool
	CORSAllowOrigins []string

	// MeterProvider enables HTTP metrics when non-nil.
	MeterProvider    metric.MeterProvider
	MetricsNamespace string
}

// Server serves the operation boundary.
type Server struct {
	server     *http.Server
	router     *gin.Engine
	dispatcher *operation.Dispatcher
	probe      ReadinessProbe
	logger     *slog.Logger

	cancel context.CancelFunc
}

// NewServer creates a Server. Call SetupRouter before Start.
func NewServer(
	dispatcher *operation.Dispatcher,
	probe ReadinessProbe,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		dispatcher: dispatcher,
		probe:      probe,
		logger:     logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine with every route and middleware.
func (s *Server) SetupRouter(cfg RouterConfig) {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if cors := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); cors != nil {
		router.Use(cors)
	}
	if cfg.MeterProvider != nil {
		router.Use(metricsMiddleware(cfg.MeterProvider, cfg.MetricsNamespace, s.dispatcher))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}
	v1.GET("/operations", s.listOperationsHandler)
	v1.POST("/operations/:name", s.operationHandler)

	s.router = router
}

// Handler returns the router for testing purposes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return errors.New("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and then for any
// operation still running on the dispatcher.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if s.cancel != nil {
		s.cancel()
	}

	err := s.server.Shutdown(ctx)
	if s.dispatcher != nil {
		s.dispatcher.Wait()
	}
	return err
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	status := "ok"
	if s.probe == nil {
		status = "error"
	} else if err := s.probe(c.Request.Context()); err != nil {
		s.logger.Warn("readiness check failed", slog.Any("error", err))
		status = "error"
	}

	if status != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"vault": status},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"vault": status},
	})
}
