package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/bookstore/logger"
	"github.com/kbukum/bookstore/observability"
	"github.com/kbukum/bookstore/server/middleware"
)

// Server is the HTTP server of the mock API.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger

	mu   sync.Mutex
	addr string
}

// New creates a Server. Call ApplyMiddleware before registering routes.
func New(cfg Config, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      h2c.NewHandler(engine, h2s),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		engine: engine,
		config: cfg,
		addr:   cfg.Addr(),
		log:    log.WithComponent("server"),
	}
}

// Name identifies the server in the application lifecycle.
func (s *Server) Name() string { return "http" }

// Routes lists the registered routes as "METHOD /path".
func (s *Server) Routes() []string {
	routes := s.engine.Routes()
	out := make([]string, len(routes))
	for i, r := range routes {
		out[i] = r.Method + " " + r.Path
	}
	return out
}

// GinEngine returns the engine for route registration.
func (s *Server) GinEngine() *gin.Engine { return s.engine }

// Handler returns the h2c-wrapped handler, for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// API returns the route group under the configured base path.
func (s *Server) API() *gin.RouterGroup { return s.engine.Group(s.config.BasePath) }

// ApplyMiddleware installs recovery, request id, request logging, CORS and
// the body size limit.
func (s *Server) ApplyMiddleware() {
	s.engine.Use(middleware.Recovery(s.log))
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.RequestLogger(s.log))
	s.engine.Use(middleware.CORS(&s.config.CORS))
	if s.config.MaxBodySize != "" {
		s.engine.Use(middleware.BodySizeLimit(s.config.MaxBodySize))
	}
}

// RegisterHealth serves GET /health and GET <base>/health. The response is
// 503 when any checker reports down.
func (s *Server) RegisterHealth(service, version string, checkers ...observability.HealthChecker) {
	h := func(c *gin.Context) {
		health := observability.CheckAll(c.Request.Context(), service, version, checkers...)
		status := http.StatusOK
		if health.Status == observability.HealthStatusDown {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, health)
	}
	s.engine.GET("/health", h)
	if s.config.BasePath != "" && s.config.BasePath != "/" {
		s.engine.GET(s.config.BasePath+"/health", h)
	}
}

// Start binds the port and serves in a goroutine. It returns once the
// listener is bound.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", logger.ErrorFields("serve", err))
		}
	}()

	s.log.Info("HTTP server started", logger.Fields("addr", s.Addr(), "base_path", s.config.BasePath))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("HTTP server shut down")
	return nil
}

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}
