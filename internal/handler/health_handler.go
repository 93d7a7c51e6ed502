package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/ghostkube/internal/pipeline"
	"github.com/xxxsen/ghostkube/internal/pkg/response"
)

type HealthHandler struct {
	pipe *pipeline.Pipeline
}

func NewHealthHandler(pipe *pipeline.Pipeline) *HealthHandler {
	return &HealthHandler{pipe: pipe}
}

type healthResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
	Embedder  string `json:"embedder"`
	Reranker  string `json:"reranker"`
}

func (h *HealthHandler) Health(c *gin.Context) {
	n, err := h.pipe.Count(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, healthResponse{
		Status:    "ok",
		Documents: n,
		Embedder:  h.pipe.EmbedderName(),
		Reranker:  h.pipe.RerankerName(),
	})
}
