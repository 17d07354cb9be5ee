// Package server sets up the HTTP server with all routes
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/NOURDINED-MED/fraudscore/internal/bank"
	"github.com/NOURDINED-MED/fraudscore/internal/config"
	"github.com/NOURDINED-MED/fraudscore/internal/fraud"
	"github.com/NOURDINED-MED/fraudscore/internal/idgen"
	"github.com/NOURDINED-MED/fraudscore/internal/logging"
	"github.com/NOURDINED-MED/fraudscore/internal/metrics"
	"github.com/NOURDINED-MED/fraudscore/internal/ratelimit"
	"github.com/NOURDINED-MED/fraudscore/internal/realtime"
	"github.com/NOURDINED-MED/fraudscore/internal/security"
	"github.com/NOURDINED-MED/fraudscore/internal/validation"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg          *config.Config
	bankStore    bank.Store
	fraudStore   fraud.Store
	fraudService *fraud.Service
	realtimeHub  *realtime.Hub
	rateLimiter  *ratelimit.Limiter
	db           *sql.DB // nil if using in-memory
	router       *gin.Engine
	httpSrv      *http.Server
	logger       *slog.Logger
	cancelRunCtx context.CancelFunc // cancels background goroutines started in Run

	// Health state
	ready   atomic.Bool
	healthy atomic.Bool
}

// Option configures the server
type Option func(*Server)

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a new server instance
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logging.New(cfg.LogLevel, "json"),
	}

	for _, opt := range opts {
		opt(s)
	}

	ctx := context.Background()

	// Initialize storage (Postgres if DATABASE_URL set, otherwise in-memory)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		s.db = db
		s.bankStore = bank.NewPostgresStore(db)

		fraudStore := fraud.NewPostgresStore(db)
		if err := fraudStore.Migrate(ctx); err != nil {
			s.logger.Warn("failed to migrate assessment store", "error", err)
		}
		s.fraudStore = fraudStore
		s.logger.Info("using PostgreSQL storage", "url", maskDSN(cfg.DatabaseURL))
	} else {
		s.bankStore = bank.NewMemoryStore()
		s.fraudStore = fraud.NewMemoryStore()
		s.logger.Info("using in-memory storage (data will not persist)")
	}

	s.realtimeHub = realtime.NewHub(s.logger)
	s.fraudService = fraud.NewService(s.fraudStore, s.bankStore).
		WithAlertEmitter(s.realtimeHub).
		WithWindowLimit(cfg.RecentWindowLimit)

	// Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()
	s.setupMiddleware()
	s.setupRoutes()

	s.healthy.Store(true)

	return s, nil
}

func (s *Server) setupMiddleware() {
	// Recovery with logging
	s.router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logging.L(c.Request.Context()).Error("panic recovered",
			"error", recovered,
			"path", c.Request.URL.Path,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "An unexpected error occurred",
		})
	}))

	// Security headers
	s.router.Use(security.HeadersMiddleware())

	// CORS
	s.router.Use(security.CORSMiddleware(s.cfg.AllowedOrigins))

	// Request size limit (1MB)
	s.router.Use(validation.RequestSizeMiddleware(validation.MaxRequestSize))

	// Rate limiting
	limiterCfg := ratelimit.DefaultConfig()
	limiterCfg.RequestsPerMinute = s.cfg.RateLimitRPM
	s.rateLimiter = ratelimit.New(limiterCfg)
	s.router.Use(s.rateLimiter.Middleware())

	// Prometheus metrics
	s.router.Use(metrics.Middleware())

	// Request ID
	s.router.Use(s.requestIDMiddleware())

	// Logging
	s.router.Use(s.loggingMiddleware())
}

func (s *Server) requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check for existing request ID (from load balancer, etc.)
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = idgen.Hex(8)
		}

		ctx := logging.WithRequestID(c.Request.Context(), requestID)
		ctx = logging.WithLogger(ctx, s.logger)
		c.Request = c.Request.WithContext(ctx)

		c.Header("X-Request-ID", requestID)

		c.Next()
	}
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		logger := logging.L(c.Request.Context())

		switch {
		case status >= 500:
			logger.Error("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
				"client_ip", c.ClientIP(),
			)
		case status >= 400:
			logger.Warn("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		default:
			logger.Info("request completed",
				"method", c.Request.Method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}
	}
}

func (s *Server) setupRoutes() {
	// Health & metrics endpoints
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/health/live", s.livenessHandler)
	s.router.GET("/health/ready", s.readinessHandler)
	s.router.GET("/metrics", metrics.Handler())

	// WebSocket alert stream for review dashboards
	s.router.GET("/ws", func(c *gin.Context) {
		s.realtimeHub.HandleWebSocket(c.Writer, c.Request)
	})

	s.router.GET("/api", s.infoHandler)

	// V1 API group
	v1 := s.router.Group("/v1")
	fraud.NewHandler(s.fraudService).RegisterRoutes(v1)
	bank.NewHandler(s.bankStore, s.fraudService).RegisterRoutes(v1)

	// Alert stream statistics
	v1.GET("/stream/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.realtimeHub.Stats())
	})
}

func (s *Server) healthHandler(c *gin.Context) {
	checks := make(map[string]string)

	if s.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			checks["database"] = "unhealthy"
		} else {
			checks["database"] = "healthy"
		}
	} else {
		checks["database"] = "in-memory"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	for _, v := range checks {
		if v == "unhealthy" {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"version":   "0.1.0",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) livenessHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) infoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "fraudscore",
		"description": "Heuristic fraud scoring for banking transactions",
		"version":     "0.1.0",
	})
}

// Run starts the server and blocks until shutdown
func (s *Server) Run(ctx context.Context) error {
	// Cancellable context for background goroutines so Shutdown() can stop them.
	runCtx, cancel := context.WithCancel(ctx)
	s.cancelRunCtx = cancel

	s.httpSrv = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("starting server", "port", s.cfg.Port, "env", s.cfg.Env)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Start realtime hub
	go s.realtimeHub.Run(runCtx)

	// Start DB stats collector
	if s.db != nil {
		go metrics.StartDBStatsCollector(runCtx, s.db, 15*time.Second)
	}

	// Mark as ready after brief delay for startup
	go func() {
		time.Sleep(100 * time.Millisecond)
		s.ready.Store(true)
		s.logger.Info("server ready")
	}()

	// Wait for shutdown signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		s.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.Info("context cancelled")
	}

	return s.Shutdown()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	s.ready.Store(false)
	s.logger.Info("starting graceful shutdown")

	// Cancel the context for background goroutines (hub, collectors)
	if s.cancelRunCtx != nil {
		s.cancelRunCtx()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	// Stop rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	// Close database connection pool
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("database close error", "error", err)
		} else {
			s.logger.Info("database connection closed")
		}
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the gin router for testing
func (s *Server) Router() *gin.Engine {
	return s.router
}

// maskDSN hides credentials when logging a connection string.
func maskDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "***"
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	return u.Redacted()
}
