package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/mail-insight/internal/config"
	"github.com/mikey/mail-insight/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server exposes analysis runs over HTTP
type Server struct {
	cfg      config.ServerConfig
	runner   ports.AnalysisRunner
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	router   *gin.Engine
	server   *http.Server
	now      func() time.Time
}

// NewServer creates a new HTTP API server. gatherer may be nil, in which case no metrics route is mounted.
func NewServer(
	cfg config.ServerConfig,
	runner ports.AnalysisRunner,
	gatherer prometheus.Gatherer,
	logger *zap.Logger,
) *Server {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	s := &Server{
		cfg:      cfg,
		runner:   runner,
		gatherer: gatherer,
		logger:   logger,
		now:      time.Now,
	}
	s.router = s.routes()
	s.server = &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           s.router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.logger), allowAllOrigins())

	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)
	r.GET("/categories", s.handleCategories)
	r.POST("/analyze", s.handleAnalyze)

	if s.cfg.MetricsEnabled && s.gatherer != nil {
		path := s.cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}
	return r
}

// Handler returns the routed handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Stop is called or the listener fails
func (s *Server) Start() error {
	s.logger.Info("HTTP API starting", zap.String("address", s.cfg.ListenAddress))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down, waiting for in-flight runs until ctx expires
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP API shutting down")
	return s.server.Shutdown(ctx)
}

var _ ports.Server = (*Server)(nil)

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client", c.ClientIP()))
	}
}

// allowAllOrigins answers CORS preflights and allows any origin
func allowAllOrigins() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Add("Vary", "Origin")
		if c.Request.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			if requested := c.GetHeader("Access-Control-Request-Headers"); requested != "" {
				h.Set("Access-Control-Allow-Headers", requested)
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
