package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/ghostkube/internal/model"
	"github.com/xxxsen/ghostkube/internal/pkg/response"
	"github.com/xxxsen/ghostkube/internal/service"
)

type SearchHandler struct {
	search      *service.SearchService
	defaultTopK int
}

func NewSearchHandler(search *service.SearchService, defaultTopK int) *SearchHandler {
	if defaultTopK <= 0 {
		defaultTopK = 5
	}
	return &SearchHandler{search: search, defaultTopK: defaultTopK}
}

type searchRequest struct {
	Query      string `json:"query"`
	TopResults *int   `json:"top_results"`
}

// Search always answers 200 once the body parses; failures come back as an empty result list.
func (h *SearchHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}
	q := model.Query{Text: req.Query, TopK: h.defaultTopK}
	if req.TopResults != nil {
		q.TopK = *req.TopResults
	}
	response.Success(c, h.search.Search(c.Request.Context(), q))
}
