package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	corpusgraph "github.com/corpusgraph/corpusgraph"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	graph corpusgraph.CorpusGraph
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(graph corpusgraph.CorpusGraph) *HealthHandler {
	return &HealthHandler{graph: graph}
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "corpusgraph",
	})
}

// ReadinessCheck handles GET /ready. Readiness requires the graph database
// to answer a stats query.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if _, err := h.graph.Stats(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "not ready",
			"service": "corpusgraph",
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": "corpusgraph",
	})
}
