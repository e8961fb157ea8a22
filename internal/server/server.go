package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nhle/rdq-notify/internal/model"
	"github.com/nhle/rdq-notify/internal/store"
)

// Server exposes a notification store over the REST API the client
// consumes. It stands in for the production backend during development.
type Server struct {
	store  store.Store
	logger *zap.Logger
	secret []byte
	engine *gin.Engine
}

// New builds the router for st. cfg supplies the signing secret and the
// per-user rate limit.
func New(st store.Store, cfg model.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		store:  st,
		logger: logger,
		secret: []byte(cfg.JWTSecret),
		engine: gin.New(),
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(requestID())
	s.engine.Use(requestLogger(logger))
	s.engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Authorization", "Content-Type", requestIDHeader},
		ExposeHeaders:   []string{"Content-Length", requestIDHeader},
		MaxAge:          12 * time.Hour,
	}))

	s.routes(cfg.RatePerMinute)
	return s
}

func (s *Server) routes(ratePerMinute int) {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api/notifications")
	api.Use(authenticate(s.secret))
	api.Use(rateLimit(ratePerMinute, s.logger))
	{
		api.GET("", s.listNotifications)
		api.POST("", s.createNotification)
		api.GET("/stats", s.stats)
		api.GET("/unread-count", s.unreadCount)
		api.PUT("/mark-all-read", s.markAllRead)
		api.GET("/preferences", s.listPreferences)
		api.PUT("/preferences/:id", s.updatePreference)
		api.PUT("/:id/read", s.markRead)
		api.DELETE("/:id", s.deleteNotification)
	}
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("notification server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down notification server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
