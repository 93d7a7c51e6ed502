package admission

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/ghostkube/internal/pkg/errcode"
	"github.com/xxxsen/ghostkube/internal/pkg/response"
)

func (m *Mutator) Handle(c *gin.Context) {
	var in Review
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid admission review")
		return
	}
	out, err := m.Review(c.Request.Context(), &in)
	if err != nil {
		logutil.GetLogger(c.Request.Context()).Warn("admission review rejected", zap.Error(err))
		response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, err.Error())
		return
	}
	response.Success(c, out)
}

// RegisterRoutes mounts POST /mutate and GET /healthz.
func RegisterRoutes(group *gin.RouterGroup, m *Mutator) {
	group.POST("/mutate", m.Handle)
	group.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
}
