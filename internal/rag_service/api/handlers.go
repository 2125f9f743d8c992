package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"docurag/internal/models"
	"docurag/internal/rag/pipeline"
	"docurag/internal/rag/schema"
	"docurag/internal/rag_service/service"
	"docurag/pkg/logger"
)

// Service is the part of the RAG service the HTTP handlers need.
type Service interface {
	ProcessPDF(ctx context.Context, filename string, r io.Reader) (*pipeline.Report, error)
	Query(ctx context.Context, question string) (*schema.Answer, error)
	ListDocuments(ctx context.Context, limit int) ([]*models.DocumentRecord, error)
}

// Handler holds the HTTP handlers of the RAG service.
type Handler struct {
	svc Service
	log *logger.Logger
}

// NewHandler creates a new Handler.
func NewHandler(svc Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// ProcessPDF handles a multipart PDF upload and runs it through the
// ingestion pipeline synchronously.
func (h *Handler) ProcessPDF(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer f.Close()

	report, err := h.svc.ProcessPDF(c.Request.Context(), fileHeader.Filename, f)
	if err != nil {
		if errors.Is(err, service.ErrNotPDF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("Failed to process document: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to process document",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "document processed and indexed",
		"filename": fileHeader.Filename,
		"chunks": gin.H{
			"texts":  report.Chunks[schema.KindText],
			"tables": report.Chunks[schema.KindTable],
			"images": report.Chunks[schema.KindImage],
		},
	})
}

type queryRequest struct {
	Question string `json:"question" binding:"required"`
}

// Query answers a question against the indexed corpus.
func (h *Handler) Query(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field 'question' is required"})
		return
	}

	answer, err := h.svc.Query(c.Request.Context(), req.Question)
	if err != nil {
		h.log.Error("Failed to answer query: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to answer query",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"question": req.Question,
		"answer":   answer.Response,
		"context":  answer.Context,
	})
}

// ListDocuments returns the most recent ingestion records.
func (h *Handler) ListDocuments(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	records, err := h.svc.ListDocuments(c.Request.Context(), limit)
	if err != nil {
		h.log.Error("Failed to list documents: " + err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}
	if records == nil {
		records = []*models.DocumentRecord{}
	}

	c.JSON(http.StatusOK, gin.H{"documents": records})
}
