package interfaces

import (
	"context"
	"time"

	"docurag/internal/rag/schema"
)

// Extractor is the interface for turning a raw document file into a sequence
// of typed content chunks. Extraction is all-or-nothing: on error no chunks
// are returned.
type Extractor interface {
	Extract(ctx context.Context, path string) ([]*schema.ContentChunk, error)
}

// Summarizer is the interface for batch-summarizing content chunks of one
// kind. The output is order-preserving with exactly one (possibly empty)
// summary per input chunk. An empty input returns an empty output without
// invoking the model.
type Summarizer interface {
	SummarizeBatch(ctx context.Context, kind schema.ChunkKind, chunks []*schema.ContentChunk) ([]string, error)
}

// VectorIndex is the interface for storing and retrieving index entries by
// text similarity. Entries are never updated in place.
type VectorIndex interface {
	Upsert(ctx context.Context, entries []*schema.IndexEntry) error
	Query(ctx context.Context, text string, topK int) ([]*schema.IndexEntry, error)
}

// ObjectStore is the interface for binary object storage. Presigned URLs are
// generated fresh at read time and never persisted; only keys are stable.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PutFromPath(ctx context.Context, path, key string) error
	PresignedGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// EmbeddingModel is the interface for a text embedding model.
type EmbeddingModel interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// LLM is the interface for a generative model that can produce text from a
// prompt, optionally grounded on an inline image.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}
