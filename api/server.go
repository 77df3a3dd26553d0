// Package api serves the leaderboard engine over HTTP
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MichiMauch/geomaster.world-sub001/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"
)

// Config holds configuration for the API server
type Config struct {
	Port               int
	AllowedOrigins     []string
	RateLimitPerSecond float64
	RateLimitBurst     int
	RequestTimeout     time.Duration
}

// ReadinessCheck is one dependency probed by /ready
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Services holds the application services exposed over HTTP
type Services struct {
	Rankings     service.RankingService
	Duels        service.DuelService
	Leaderboards service.LeaderboardService
	Overall      service.OverallLeaderboardService
}

// Server is the REST API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	port       int
	timeout    time.Duration
	origins    []string
	limiter    *clientLimiter
	checks     []ReadinessCheck

	rankings     service.RankingService
	duels        service.DuelService
	leaderboards service.LeaderboardService
	overall      service.OverallLeaderboardService
}

// NewServer creates a server with all routes installed
func NewServer(cfg Config, services Services, checks ...ReadinessCheck) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
	if cfg.RateLimitPerSecond <= 0 {
		cfg.RateLimitPerSecond = 20
	}

	s := &Server{
		router:       chi.NewRouter(),
		port:         cfg.Port,
		timeout:      cfg.RequestTimeout,
		origins:      cfg.AllowedOrigins,
		limiter:      newClientLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst),
		checks:       checks,
		rankings:     services.Rankings,
		duels:        services.Duels,
		leaderboards: services.Leaderboards,
		overall:      services.Overall,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestMetrics)
	s.router.Use(middleware.Timeout(s.timeout))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
}

// Handler returns the root handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.WithField("port", s.port).Info("Starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
