package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"docurag/internal/rag/interfaces"
	"docurag/internal/rag/schema"
	"docurag/pkg/logger"
)

// Report summarizes a completed ingestion run.
type Report struct {
	// ObjectKey is the key the source document was stored under.
	ObjectKey string

	// Chunks counts the extracted chunks per kind.
	Chunks map[schema.ChunkKind]int

	// Indexed counts the index rows written per kind.
	Indexed map[schema.ChunkKind]int
}

// ingestionState is the record passed between stages. Each stage returns a
// new value instead of mutating the one it received, so a failed stage never
// leaves partially updated state behind.
type ingestionState struct {
	filePath  string
	objectKey string
	chunks    []*schema.ContentChunk
	summaries map[schema.ChunkKind][]string
	indexed   map[schema.ChunkKind]int
}

func (s ingestionState) chunksOf(kind schema.ChunkKind) []*schema.ContentChunk {
	var out []*schema.ContentChunk
	for _, chunk := range s.chunks {
		if chunk.Kind == kind {
			out = append(out, chunk)
		}
	}
	return out
}

type ingestionStage struct {
	name string
	fn   func(ctx context.Context, state ingestionState) (ingestionState, error)
}

// IngestionPipeline runs a document through extraction, summarization and
// indexing. All collaborators are injected; the pipeline itself holds no
// connection state.
type IngestionPipeline struct {
	extractor  interfaces.Extractor
	summarizer interfaces.Summarizer
	index      interfaces.VectorIndex
	store      interfaces.ObjectStore
	log        *logger.Logger
}

// NewIngestionPipeline creates a new IngestionPipeline.
func NewIngestionPipeline(
	extractor interfaces.Extractor,
	summarizer interfaces.Summarizer,
	index interfaces.VectorIndex,
	store interfaces.ObjectStore,
	log *logger.Logger,
) *IngestionPipeline {
	return &IngestionPipeline{
		extractor:  extractor,
		summarizer: summarizer,
		index:      index,
		store:      store,
		log:        log,
	}
}

// Run ingests the document at filePath: the stages execute in a fixed order
// and the first failure aborts the run. Already indexed rows from earlier
// stages are left in place; re-running the document writes fresh rows with
// new IDs rather than touching old ones.
func (p *IngestionPipeline) Run(ctx context.Context, filePath string) (*Report, error) {
	stages := []ingestionStage{
		{name: "preprocess", fn: p.preprocess},
		{name: "summarize", fn: p.summarize},
		{name: "load_summaries", fn: p.loadSummaries},
	}

	state := ingestionState{filePath: filePath}
	for _, stage := range stages {
		next, err := stage.fn(ctx, state)
		if err != nil {
			p.log.Error(fmt.Sprintf("Ingestion of %s failed at stage %s: %v", filePath, stage.name, err))
			return nil, fmt.Errorf("%s stage: %w", stage.name, err)
		}
		state = next
	}

	report := &Report{
		ObjectKey: state.objectKey,
		Chunks:    make(map[schema.ChunkKind]int, len(schema.Kinds)),
		Indexed:   state.indexed,
	}
	for _, kind := range schema.Kinds {
		report.Chunks[kind] = len(state.chunksOf(kind))
	}

	p.log.Info(fmt.Sprintf("Ingested %s: %d chunks, stored as %s", filePath, len(state.chunks), state.objectKey))
	return report, nil
}

// preprocess stores the raw document and extracts its content chunks.
func (p *IngestionPipeline) preprocess(ctx context.Context, state ingestionState) (ingestionState, error) {
	objectKey := "pdfs/" + uuid.New().String() + ".pdf"
	if err := p.store.PutFromPath(ctx, state.filePath, objectKey); err != nil {
		return state, err
	}

	chunks, err := p.extractor.Extract(ctx, state.filePath)
	if err != nil {
		return state, err
	}

	next := state
	next.objectKey = objectKey
	next.chunks = chunks
	return next, nil
}

// summarize produces one summary per chunk, one batch per kind.
func (p *IngestionPipeline) summarize(ctx context.Context, state ingestionState) (ingestionState, error) {
	summaries := make(map[schema.ChunkKind][]string, len(schema.Kinds))
	for _, kind := range schema.Kinds {
		batch, err := p.summarizer.SummarizeBatch(ctx, kind, state.chunksOf(kind))
		if err != nil {
			return state, err
		}
		summaries[kind] = batch
	}

	next := state
	next.summaries = summaries
	return next, nil
}

// loadSummaries writes the index rows. Text and table chunks produce two
// rows sharing a source ID, one for the summary and one for the original
// content. Image chunks are uploaded to the object store and produce a
// single summary row pointing at the stored key. Chunks whose summary came
// back empty are skipped.
func (p *IngestionPipeline) loadSummaries(ctx context.Context, state ingestionState) (ingestionState, error) {
	indexed := make(map[schema.ChunkKind]int, len(schema.Kinds))

	for _, kind := range schema.Kinds {
		chunks := state.chunksOf(kind)
		summaries := state.summaries[kind]

		// One source ID per original chunk, minted before any writes so
		// summary and original rows agree on it.
		sourceIDs := make([]string, len(chunks))
		for i := range chunks {
			sourceIDs[i] = uuid.New().String()
		}

		var entries []*schema.IndexEntry
		for i, chunk := range chunks {
			summary := summaries[i]
			if strings.TrimSpace(summary) == "" {
				p.log.Warn(fmt.Sprintf("Skipping %s chunk %d of %s: empty summary", kind, i, chunk.SourceDocument))
				continue
			}

			if kind == schema.KindImage {
				key := "images/" + sourceIDs[i] + ".jpg"
				if err := p.store.Put(ctx, key, chunk.Image, "image/jpeg"); err != nil {
					return state, err
				}
				entries = append(entries, &schema.IndexEntry{
					ID:       uuid.New().String(),
					Text:     summary,
					SourceID: sourceIDs[i],
					ImageKey: key,
				})
				continue
			}

			entries = append(entries, &schema.IndexEntry{
				ID:       uuid.New().String(),
				Text:     summary,
				SourceID: sourceIDs[i],
			})
			entries = append(entries, &schema.IndexEntry{
				ID:       uuid.New().String(),
				Text:     chunk.Text,
				SourceID: sourceIDs[i],
			})
		}

		if err := p.index.Upsert(ctx, entries); err != nil {
			return state, err
		}
		indexed[kind] = len(entries)
	}

	next := state
	next.indexed = indexed
	return next, nil
}
