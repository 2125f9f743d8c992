package vectorstore

import (
	"context"
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"docurag/internal/database/milvus"
	"docurag/internal/rag/interfaces"
	"docurag/internal/rag/schema"
	"docurag/pkg/logger"
)

// IndexError is returned for failed index operations.
type IndexError struct {
	Op  string
	Err error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("vector index %s failed: %v", e.Op, e.Err)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

// MilvusIndex is an adapter for the shared Milvus client that implements the
// VectorIndex interface. Entries are embedded on the way in so callers only
// ever deal with text.
type MilvusIndex struct {
	log        *logger.Logger
	client     client.Client
	collection string
	embedder   interfaces.EmbeddingModel
}

// NewMilvusIndex creates a new MilvusIndex on top of the project's Milvus
// client wrapper.
func NewMilvusIndex(milvusClient *milvus.MilvusClient, embedder interfaces.EmbeddingModel, log *logger.Logger) (*MilvusIndex, error) {
	if milvusClient == nil || milvusClient.Client == nil {
		return nil, fmt.Errorf("milvus client is not initialized")
	}
	return &MilvusIndex{
		log:        log,
		client:     milvusClient.Client,
		collection: milvusClient.Config.Collection,
		embedder:   embedder,
	}, nil
}

// Upsert embeds the entry texts in one batch and inserts the rows into the
// collection. A row is written exactly as given; nothing is updated in place.
func (s *MilvusIndex) Upsert(ctx context.Context, entries []*schema.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	texts := make([]string, len(entries))
	for i, entry := range entries {
		texts[i] = entry.Text
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return &IndexError{Op: "embed", Err: err}
	}
	if len(vectors) != len(entries) {
		return &IndexError{Op: "embed", Err: fmt.Errorf("got %d vectors for %d entries", len(vectors), len(entries))}
	}

	ids := make([]string, len(entries))
	sourceIDs := make([]string, len(entries))
	imageKeys := make([]string, len(entries))
	dim := 0
	for i, entry := range entries {
		ids[i] = entry.ID
		sourceIDs[i] = entry.SourceID
		imageKeys[i] = entry.ImageKey
		if len(vectors[i]) > dim {
			dim = len(vectors[i])
		}
	}

	idCol := entity.NewColumnVarChar(milvus.FieldID, ids)
	textCol := entity.NewColumnVarChar(milvus.FieldText, texts)
	sourceIDCol := entity.NewColumnVarChar(milvus.FieldSourceID, sourceIDs)
	imageKeyCol := entity.NewColumnVarChar(milvus.FieldImageKey, imageKeys)
	embeddingCol := entity.NewColumnFloatVector(milvus.FieldEmbedding, dim, vectors)

	s.log.Info(fmt.Sprintf("Inserting %d entries into Milvus collection: %s", len(entries), s.collection))
	_, err = s.client.Insert(ctx, s.collection, "" /* default partition */, idCol, textCol, sourceIDCol, imageKeyCol, embeddingCol)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to insert data into Milvus: %v", err))
		return &IndexError{Op: "insert", Err: err}
	}

	return nil
}

// Query embeds the question text and returns the topK most similar entries.
func (s *MilvusIndex) Query(ctx context.Context, text string, topK int) ([]*schema.IndexEntry, error) {
	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, &IndexError{Op: "embed", Err: err}
	}
	if len(vectors) != 1 {
		return nil, &IndexError{Op: "embed", Err: fmt.Errorf("got %d vectors for query", len(vectors))}
	}

	searchParams, _ := entity.NewIndexIvfFlatSearchParam(10)
	outputFields := []string{milvus.FieldID, milvus.FieldText, milvus.FieldSourceID, milvus.FieldImageKey}

	searchResults, err := s.client.Search(
		ctx, s.collection, []string{}, "", outputFields,
		[]entity.Vector{entity.FloatVector(vectors[0])},
		milvus.FieldEmbedding, entity.L2, topK, searchParams,
	)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to search in Milvus: %v", err))
		return nil, &IndexError{Op: "search", Err: err}
	}

	var results []*schema.IndexEntry
	for _, res := range searchResults {
		findColumn := func(name string) entity.Column {
			for _, field := range res.Fields {
				if field.Name() == name {
					return field
				}
			}
			return nil
		}

		idCol, ok := findColumn(milvus.FieldID).(*entity.ColumnVarChar)
		if !ok {
			s.log.Warn("Search result is missing ID field or has wrong type, skipping.")
			continue
		}
		idData := idCol.Data()

		var textData, sourceIDData, imageKeyData []string
		if col, ok := findColumn(milvus.FieldText).(*entity.ColumnVarChar); ok {
			textData = col.Data()
		}
		if col, ok := findColumn(milvus.FieldSourceID).(*entity.ColumnVarChar); ok {
			sourceIDData = col.Data()
		}
		if col, ok := findColumn(milvus.FieldImageKey).(*entity.ColumnVarChar); ok {
			imageKeyData = col.Data()
		}

		for i := 0; i < res.ResultCount; i++ {
			entry := &schema.IndexEntry{ID: idData[i]}
			if textData != nil {
				entry.Text = textData[i]
			}
			if sourceIDData != nil {
				entry.SourceID = sourceIDData[i]
			}
			if imageKeyData != nil {
				entry.ImageKey = imageKeyData[i]
			}
			results = append(results, entry)
		}
	}

	return results, nil
}

// compile-time check to ensure MilvusIndex implements the VectorIndex interface
var _ interfaces.VectorIndex = (*MilvusIndex)(nil)
