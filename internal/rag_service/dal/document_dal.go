package dal

import (
	"context"

	"gorm.io/gorm"

	"docurag/internal/models"
)

// DocumentDAL provides data access methods for the document registry.
type DocumentDAL struct {
	db *gorm.DB
}

// NewDocumentDAL creates a new DocumentDAL.
func NewDocumentDAL(db *gorm.DB) *DocumentDAL {
	return &DocumentDAL{db: db}
}

// CreateRecord persists one ingestion attempt.
func (dal *DocumentDAL) CreateRecord(ctx context.Context, record *models.DocumentRecord) error {
	result := dal.db.WithContext(ctx).Create(record)
	return result.Error
}

// ListRecent retrieves the most recent ingestion records, newest first.
func (dal *DocumentDAL) ListRecent(ctx context.Context, limit int) ([]*models.DocumentRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []*models.DocumentRecord
	result := dal.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&records)
	if result.Error != nil {
		return nil, result.Error
	}
	return records, nil
}
