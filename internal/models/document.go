package models

import "time"

// Document statuses recorded in the registry.
const (
	DocumentStatusProcessed = "processed"
	DocumentStatusFailed    = "failed"
)

// DocumentRecord is one row of the document registry: a bookkeeping record
// of every ingestion attempt. The indexed content itself lives in Milvus and
// MinIO; this table only answers "what was ingested, when, and did it work".
type DocumentRecord struct {
	ID          uint   `gorm:"primaryKey"`
	Filename    string `gorm:"not null;size:512"` // Original upload filename
	ObjectKey   string `gorm:"size:512"`          // Object store key of the raw document, empty for early failures
	Status      string `gorm:"not null;size:32;index"`
	TextChunks  int
	TableChunks int
	ImageChunks int
	Error       string `gorm:"size:2048"` // Failure reason, empty on success
	CreatedAt   time.Time
}
