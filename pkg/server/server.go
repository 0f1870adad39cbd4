// Package server exposes the query engine over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	memento "github.com/vargamick/poster-memento-sub005"
	"github.com/vargamick/poster-memento-sub005/pkg/config"
	"github.com/vargamick/poster-memento-sub005/pkg/metrics"
	"github.com/vargamick/poster-memento-sub005/pkg/server/handlers"
	"github.com/vargamick/poster-memento-sub005/pkg/telemetry"
)

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	router   *gin.Engine
	engine   memento.Engine
	querylog *telemetry.QueryLog
	server   *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, engine memento.Engine) *Server {
	return &Server{
		config: cfg,
		engine: engine,
	}
}

// WithQueryLog attaches a telemetry query log. Call before Setup.
func (s *Server) WithQueryLog(q *telemetry.QueryLog) *Server {
	s.querylog = q
	return s
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	// Set gin mode
	gin.SetMode(s.config.Server.Mode)

	// Create router
	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(requestIDMiddleware())

	// Setup routes
	s.setupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// Router returns the configured gin router. Setup must have run first.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	// Create handlers
	healthHandler := handlers.NewHealthHandler(s.engine)
	searchHandler := handlers.NewSearchHandler(s.engine, s.querylog)
	pathHandler := handlers.NewPathHandler(s.engine, s.querylog)
	analyticsHandler := handlers.NewAnalyticsHandler(s.engine, s.querylog)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/version", healthHandler.BuildInfo)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		// Search routes
		v1.POST("/search", searchHandler.Search)
		v1.GET("/search/strategies", searchHandler.Strategies)
		v1.GET("/search/hybrid-config", searchHandler.GetHybridConfig)
		v1.PUT("/search/hybrid-config", searchHandler.UpdateHybridConfig)

		// Path discovery
		v1.POST("/paths", pathHandler.FindPaths)

		// Node analytics
		v1.GET("/analytics/:entity", analyticsHandler.NodeAnalytics)
	}

	if s.config.Metrics.Enabled {
		s.router.GET("/metrics", gin.WrapH(metrics.EnablePrometheus()))
	}
}

// Start starts the server
func (s *Server) Start() error {
	fmt.Printf("Starting server on %s\n", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	fmt.Println("Stopping server...")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware tags every request with an ID for log correlation.
// An incoming X-Request-ID is honored, otherwise one is generated.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
