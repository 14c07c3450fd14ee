package handler

import (
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"

	"studyrag/internal/middleware"
	"studyrag/internal/pkg/errcode"
	"studyrag/internal/pkg/response"
)

type RouterDeps struct {
	Ingest         *IngestHandler
	Query          *QueryHandler
	Documents      *DocumentHandler
	DB             *sql.DB
	QueryRateLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	rag := api.Group("/rag")
	rag.POST("/documents", deps.Ingest.Upload)
	rag.GET("/documents", deps.Documents.List)
	rag.DELETE("/documents/:id", deps.Documents.Delete)
	rag.POST("/query", middleware.RateLimit(deps.QueryRateLimit), deps.Query.Query)

	api.GET("/healthz", func(c *gin.Context) {
		if deps.DB != nil {
			if err := deps.DB.PingContext(c.Request.Context()); err != nil {
				response.Error(c, errcode.ErrDatabase, "database unreachable")
				return
			}
		}
		response.Success(c, gin.H{"status": "ok"})
	})
}
