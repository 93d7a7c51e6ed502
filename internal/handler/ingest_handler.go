package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/ghostkube/internal/pkg/response"
	"github.com/xxxsen/ghostkube/internal/service"
)

type IngestHandler struct {
	ingest *service.IngestService
}

func NewIngestHandler(ingest *service.IngestService) *IngestHandler {
	return &IngestHandler{ingest: ingest}
}

type ingestRequest struct {
	URL        string                 `json:"url"`
	SourceType string                 `json:"source_type"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// Ingest answers 200 with the result on success and 400 with the same body shape on failure.
func (h *IngestHandler) Ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	res := h.ingest.IngestURL(c.Request.Context(), service.IngestRequest{
		URL:        req.URL,
		SourceType: req.SourceType,
		Metadata:   req.Metadata,
	})
	if !res.OK() {
		response.JSON(c, http.StatusBadRequest, res)
		return
	}
	response.Success(c, res)
}
