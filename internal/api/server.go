package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gateward/go-core/internal/authz"
	"github.com/gateward/go-core/internal/metrics"
	"github.com/gateward/go-core/internal/tokenx"
)

// Config configures the HTTP server
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Server is the HTTP surface over the access-control core
type Server struct {
	config   Config
	registry *authz.Registry
	tokens   *tokenx.Service
	logger   *zap.Logger
	http     *http.Server
}

// New creates the HTTP server
func New(cfg Config, registry *authz.Registry, tokens *tokenx.Service, m metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNoOpMetrics()
	}

	s := &Server{
		config:   cfg,
		registry: registry,
		tokens:   tokens,
		logger:   logger,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(principalMiddleware(logger))

	router.GET("/healthz", s.Health)
	router.GET("/metrics", gin.WrapH(m.HTTPHandler()))

	v1 := router.Group("/v1")
	{
		v1.POST("/authorize", s.Authorize)
		v1.POST("/token/client", s.ClientToken)
		v1.POST("/token/exchange", s.ExchangeToken)
	}

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler exposes the router; used by tests
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until the listener fails or Shutdown is called
func (s *Server) Run() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.config.Addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
