package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	corpusgraph "github.com/corpusgraph/corpusgraph"
	"github.com/corpusgraph/corpusgraph/pkg/config"
	"github.com/corpusgraph/corpusgraph/pkg/server/handlers"
)

// Server wraps the HTTP server exposing the extraction pipeline and graph
// reads over REST.
type Server struct {
	config *config.Config
	graph  corpusgraph.CorpusGraph
	engine *gin.Engine
	http   *http.Server
}

// New creates a new server for the given graph client.
func New(cfg *config.Config, graph corpusgraph.CorpusGraph) *Server {
	return &Server{
		config: cfg,
		graph:  graph,
	}
}

// Setup configures the gin engine and registers all routes.
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	if s.config.Server.Mode != gin.ReleaseMode {
		engine.Use(gin.Logger())
	}

	health := handlers.NewHealthHandler(s.graph)
	ingest := handlers.NewIngestHandler(s.graph)
	retrieve := handlers.NewRetrieveHandler(s.graph)

	engine.GET("/health", health.HealthCheck)
	engine.GET("/ready", health.ReadinessCheck)

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/documents", ingest.AddDocument)
		v1.POST("/documents/url", ingest.AddDocumentFromURL)
		v1.GET("/entities/:id", retrieve.GetEntity)
		v1.GET("/entities", retrieve.GetEntityByName)
		v1.GET("/graph/stats", retrieve.GetStats)
		v1.DELETE("/graph", ingest.ClearGraph)
	}

	s.engine = engine
	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Start runs the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	if s.http == nil {
		return fmt.Errorf("server not set up, call Setup first")
	}
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Engine exposes the router, for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
