package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"

	"docurag/internal/models"
	"docurag/internal/rag/pipeline"
	"docurag/internal/rag/schema"
	"docurag/internal/rag_service/dal"
	"docurag/pkg/logger"
)

// ErrNotPDF is returned when an uploaded file is not a PDF.
var ErrNotPDF = errors.New("uploaded file is not a PDF")

// RagService coordinates uploads, the two pipelines and the document
// registry behind the HTTP API.
type RagService struct {
	ingest     *pipeline.IngestionPipeline
	query      *pipeline.QueryPipeline
	docs       *dal.DocumentDAL
	log        *logger.Logger
	scratchDir string
}

// NewRagService creates a new RagService. scratchDir is where uploads are
// spooled before ingestion; empty means the OS temp directory.
func NewRagService(
	ingest *pipeline.IngestionPipeline,
	query *pipeline.QueryPipeline,
	docs *dal.DocumentDAL,
	scratchDir string,
	log *logger.Logger,
) *RagService {
	return &RagService{
		ingest:     ingest,
		query:      query,
		docs:       docs,
		log:        log,
		scratchDir: scratchDir,
	}
}

// ProcessPDF spools the upload to disk, validates that it really is a PDF
// and runs the ingestion pipeline on it. Every ingestion attempt, failed or
// not, is recorded in the document registry; a registry write failure is
// logged but does not fail the request.
func (s *RagService) ProcessPDF(ctx context.Context, filename string, r io.Reader) (*pipeline.Report, error) {
	tmp, err := os.CreateTemp(s.scratchDir, "upload-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to spool upload: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to spool upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to spool upload: %w", err)
	}

	// Sniff the actual content; the filename extension is not trusted.
	mtype, err := mimetype.DetectFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to detect upload type: %w", err)
	}
	if !mtype.Is("application/pdf") {
		return nil, ErrNotPDF
	}

	report, err := s.ingest.Run(ctx, tmp.Name())
	if err != nil {
		s.record(ctx, &models.DocumentRecord{
			Filename: filename,
			Status:   models.DocumentStatusFailed,
			Error:    err.Error(),
		})
		return nil, err
	}

	s.record(ctx, &models.DocumentRecord{
		Filename:    filename,
		ObjectKey:   report.ObjectKey,
		Status:      models.DocumentStatusProcessed,
		TextChunks:  report.Chunks[schema.KindText],
		TableChunks: report.Chunks[schema.KindTable],
		ImageChunks: report.Chunks[schema.KindImage],
	})
	return report, nil
}

// Query answers a question from the indexed corpus.
func (s *RagService) Query(ctx context.Context, question string) (*schema.Answer, error) {
	return s.query.Answer(ctx, question)
}

// ListDocuments returns the most recent ingestion records.
func (s *RagService) ListDocuments(ctx context.Context, limit int) ([]*models.DocumentRecord, error) {
	return s.docs.ListRecent(ctx, limit)
}

func (s *RagService) record(ctx context.Context, record *models.DocumentRecord) {
	if s.docs == nil {
		return
	}
	if err := s.docs.CreateRecord(ctx, record); err != nil {
		s.log.Error(fmt.Sprintf("Failed to record document '%s' in registry: %v", record.Filename, err))
	}
}
