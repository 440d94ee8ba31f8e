package dto

// AddDocumentRequest is the body for POST /api/v1/documents.
type AddDocumentRequest struct {
	Name    string `json:"name"`
	Content string `json:"content" binding:"required"`
}

// AddDocumentURLRequest is the body for POST /api/v1/documents/url.
// When Clean is true, Project Gutenberg boilerplate is stripped before
// extraction.
type AddDocumentURLRequest struct {
	Name  string `json:"name"`
	URL   string `json:"url" binding:"required"`
	Clean bool   `json:"clean"`
}

// IngestResponse summarizes a processed document.
type IngestResponse struct {
	DocumentID    string  `json:"document_id"`
	Chunks        int     `json:"chunks"`
	CachedChunks  int     `json:"cached_chunks"`
	Entities      int     `json:"entities"`
	Relationships int     `json:"relationships"`
	EstimatedCost float64 `json:"estimated_cost_usd"`
}
