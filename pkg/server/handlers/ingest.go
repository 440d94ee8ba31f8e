package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	corpusgraph "github.com/corpusgraph/corpusgraph"
	"github.com/corpusgraph/corpusgraph/pkg/llm"
	"github.com/corpusgraph/corpusgraph/pkg/server/dto"
	"github.com/corpusgraph/corpusgraph/pkg/source"
	"github.com/corpusgraph/corpusgraph/pkg/types"
)

// fetchTimeout bounds how long a document URL fetch may take.
const fetchTimeout = 60 * time.Second

// IngestHandler handles document ingestion requests
type IngestHandler struct {
	graph   corpusgraph.CorpusGraph
	fetcher *source.Fetcher
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(graph corpusgraph.CorpusGraph) *IngestHandler {
	return &IngestHandler{
		graph:   graph,
		fetcher: source.NewFetcher(fetchTimeout),
	}
}

// AddDocument handles POST /api/v1/documents
func (h *IngestHandler) AddDocument(c *gin.Context) {
	var req dto.AddDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	h.ingest(c, types.Document{
		Name:    req.Name,
		Content: req.Content,
	})
}

// AddDocumentFromURL handles POST /api/v1/documents/url
func (h *IngestHandler) AddDocumentFromURL(c *gin.Context) {
	var req dto.AddDocumentURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	var content string
	var err error
	if req.Clean {
		content, err = h.fetcher.FetchAndClean(c.Request.Context(), req.URL)
	} else {
		content, err = h.fetcher.Fetch(c.Request.Context(), req.URL)
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{
			Error:   "fetch_failed",
			Message: err.Error(),
		})
		return
	}

	name := req.Name
	if name == "" {
		name = req.URL
	}

	h.ingest(c, types.Document{
		Name:      name,
		Content:   content,
		SourceURL: req.URL,
	})
}

// ClearGraph handles DELETE /api/v1/graph
func (h *IngestHandler) ClearGraph(c *gin.Context) {
	if err := h.graph.ClearGraph(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "clear_failed",
			Message: err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *IngestHandler) ingest(c *gin.Context, doc types.Document) {
	result, err := h.graph.AddDocument(c.Request.Context(), doc)
	if err != nil {
		status := http.StatusInternalServerError
		code := "ingest_failed"
		switch {
		case errors.Is(err, corpusgraph.ErrEmptyDocument):
			status = http.StatusBadRequest
			code = "empty_document"
		case errors.Is(err, llm.ErrMalformedResponse):
			status = http.StatusBadGateway
			code = "extraction_failed"
		}
		c.JSON(status, dto.ErrorResponse{
			Error:   code,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, dto.IngestResponse{
		DocumentID:    result.DocumentID,
		Chunks:        result.Chunks,
		CachedChunks:  result.CachedChunks,
		Entities:      result.Entities,
		Relationships: result.Relationships,
		EstimatedCost: result.EstimatedCost,
	})
}
