// Package httpapi exposes the retrieval engine over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// NewRouter wires the routes. metrics may be nil to omit /metrics.
func NewRouter(h *Handler, metrics http.Handler, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"pack":   h.svc.HasPack(),
		})
	})
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	api := r.Group("/api")
	{
		sessions := api.Group("/sessions/:id")
		sessions.GET("/documents", h.ListDocuments)
		sessions.POST("/documents", h.UploadDocument)
		sessions.DELETE("/documents", h.ClearDocuments)
		sessions.DELETE("/documents/:docID", h.DeleteDocument)
		sessions.POST("/retrieve", h.RetrieveSession)

		api.POST("/pack/retrieve", h.RetrievePack)
	}
	return r
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
