package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	corpusgraph "github.com/corpusgraph/corpusgraph"
	"github.com/corpusgraph/corpusgraph/pkg/driver"
	"github.com/corpusgraph/corpusgraph/pkg/server/dto"
)

// RetrieveHandler handles graph read requests
type RetrieveHandler struct {
	graph corpusgraph.CorpusGraph
}

// NewRetrieveHandler creates a new retrieve handler
func NewRetrieveHandler(graph corpusgraph.CorpusGraph) *RetrieveHandler {
	return &RetrieveHandler{graph: graph}
}

// GetEntity handles GET /api/v1/entities/:id
func (h *RetrieveHandler) GetEntity(c *gin.Context) {
	node, err := h.graph.GetEntity(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, driver.ErrNodeNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "not_found",
				Message: "entity not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "lookup_failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.EntityResponse{
		ID:         node.ID,
		Name:       node.Name,
		EntityType: node.EntityType,
		Aliases:    node.Aliases,
		GroupID:    node.GroupID,
		CreatedAt:  node.CreatedAt,
		UpdatedAt:  node.UpdatedAt,
	})
}

// GetEntityByName handles GET /api/v1/entities?name=...
func (h *RetrieveHandler) GetEntityByName(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "name query parameter is required",
		})
		return
	}

	node, err := h.graph.GetEntityByName(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, driver.ErrNodeNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{
				Error:   "not_found",
				Message: "entity not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "lookup_failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.EntityResponse{
		ID:         node.ID,
		Name:       node.Name,
		EntityType: node.EntityType,
		Aliases:    node.Aliases,
		GroupID:    node.GroupID,
		CreatedAt:  node.CreatedAt,
		UpdatedAt:  node.UpdatedAt,
	})
}

// GetStats handles GET /api/v1/graph/stats
func (h *RetrieveHandler) GetStats(c *gin.Context) {
	stats, err := h.graph.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "stats_failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, dto.StatsResponse{
		NodeCount:   stats.NodeCount,
		EdgeCount:   stats.EdgeCount,
		NodesByType: stats.NodesByType,
		LastUpdated: stats.LastUpdated,
	})
}
