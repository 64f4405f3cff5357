// Package rest is the HTTP adapter: gin routes for registration, login and
// the current user, plus the auth middleware that guards every protected
// route.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/cmsauth/internal/logging"
	"github.com/dmitrijs2005/cmsauth/internal/server/auth"
	"github.com/dmitrijs2005/cmsauth/internal/server/models"
	"github.com/dmitrijs2005/cmsauth/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UserService is the authenticator as seen by the HTTP layer.
type UserService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.Token, error)
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
}

type Server struct {
	address         string
	users           UserService
	gate            *auth.Gate
	logger          logging.Logger
	registry        *prometheus.Registry
	metrics         *Metrics
	shutdownTimeout time.Duration
	engine          *gin.Engine
	protected       *gin.RouterGroup
}

type Option func(*Server)

// WithRegistry exposes the server's metrics through reg instead of a
// private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

func NewServer(address string, l logging.Logger, us UserService, gate *auth.Gate, opts ...Option) *Server {
	s := &Server{
		address:         address,
		users:           us,
		gate:            gate,
		logger:          l.With("module", "http_server"),
		shutdownTimeout: 10 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = NewMetrics(s.registry)

	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.accessLog(), s.instrument())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	authGroup := s.engine.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.GET("/me", s.requireAuth(), s.me)

	s.protected = s.engine.Group("/api", s.requireAuth())
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Protected returns the /api route group. Every route mounted on it runs
// behind the auth gate and can read the caller with IdentityFrom.
func (s *Server) Protected() *gin.RouterGroup {
	return s.protected
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}
