package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/ghostkube/internal/pkg/errcode"
	appErr "github.com/xxxsen/ghostkube/internal/pkg/errors"
	"github.com/xxxsen/ghostkube/internal/pkg/response"
)

func invalidRequest(c *gin.Context, err error) {
	logutil.GetLogger(c.Request.Context()).Warn("invalid request body",
		zap.String("path", c.Request.URL.Path), zap.Error(err))
	response.Error(c, http.StatusBadRequest, errcode.ErrInvalid, "invalid request")
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID, _ := c.Get("request_id")
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.Any("request_id", requestID),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err))
	switch {
	case appErr.IsNotFound(err):
		response.Error(c, http.StatusNotFound, errcode.ErrNotFound, "not found")
	case appErr.IsValidation(err):
		response.Error(c, http.StatusBadRequest, errcode.ErrValidation, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, errcode.Of(err), err.Error())
	}
}
