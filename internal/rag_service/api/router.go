package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures and returns a Gin engine instance.
func SetupRouter(h *Handler) *gin.Engine {
	// Default middleware (logger, recovery).
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiV1 := r.Group("/api/v1")
	{
		rag := apiV1.Group("/rag")
		{
			rag.POST("/process", h.ProcessPDF)
			rag.POST("/query", h.Query)
			rag.GET("/documents", h.ListDocuments)
		}
	}

	return r
}
