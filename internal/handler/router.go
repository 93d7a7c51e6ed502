package handler

import (
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/webapi"

	"github.com/xxxsen/ghostkube/internal/middleware"
)

type RouterDeps struct {
	Ingest *IngestHandler
	Search *SearchHandler
	Health *HealthHandler

	IngestRateLimit time.Duration
	IngestBurst     int
}

// NewEngine serves the api at the root of a webapi engine bound to addr.
func NewEngine(addr string, deps RouterDeps, corsOrigins []string) (webapi.IWebEngine, error) {
	return webapi.NewEngine(
		"",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(corsOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/ingest", middleware.RateLimit(deps.IngestRateLimit, deps.IngestBurst), deps.Ingest.Ingest)
	api.POST("/ghost-note", deps.Search.Search)
	api.GET("/health", deps.Health.Health)
}
