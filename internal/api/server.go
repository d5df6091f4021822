// Package api wires the gin HTTP server for the merge backend.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/firefly-merge-backend/internal/api/handlers"
	"github.com/eshaffer321/firefly-merge-backend/internal/api/middleware"
	"github.com/eshaffer321/firefly-merge-backend/internal/application/service"
	"github.com/eshaffer321/firefly-merge-backend/internal/domain/matcher"
	"github.com/eshaffer321/firefly-merge-backend/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port            int
	AllowedOrigins  []string
	MatcherDefaults matcher.Config
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:            8080,
		AllowedOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
		MatcherDefaults: matcher.DefaultConfig(),
	}
}

// Server is the HTTP API server.
type Server struct {
	config       Config
	router       *gin.Engine
	httpServer   *http.Server
	logger       *slog.Logger
	client       handlers.LedgerClient
	mergeService *service.MergeService
	repo         storage.Repository
}

// NewServer creates a new API server. repo may be nil, in which case
// the history endpoints are not registered.
func NewServer(cfg Config, client handlers.LedgerClient, mergeService *service.MergeService, repo storage.Repository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		config:       cfg,
		router:       router,
		logger:       logger,
		client:       client,
		mergeService: mergeService,
		repo:         repo,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestLogger(s.logger))

	s.router.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler()
	s.router.GET("/health", healthHandler.Get)

	api := s.router.Group("/api")
	{
		searchHandler := handlers.NewSearchHandler(s.client, s.config.MatcherDefaults, s.logger)
		api.POST("/search", searchHandler.Search)

		accountsHandler := handlers.NewAccountsHandler(s.client, s.logger)
		api.GET("/accounts", accountsHandler.List)

		mergeHandler := handlers.NewMergeHandler(s.mergeService)
		api.POST("/merge", mergeHandler.Submit)
		api.GET("/merge", mergeHandler.ListAll)
		api.GET("/merge/active", mergeHandler.ListActive)
		api.GET("/merge/jobs/:jobId", mergeHandler.Get)

		if s.repo != nil {
			historyHandler := handlers.NewHistoryHandler(s.repo)
			api.GET("/history", historyHandler.List)
			api.GET("/history/stats", historyHandler.Stats)
			api.GET("/history/runs", historyHandler.Runs)
		}
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the gin engine for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}
