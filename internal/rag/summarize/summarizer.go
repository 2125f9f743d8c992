package summarize

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"docurag/internal/rag/interfaces"
	"docurag/internal/rag/schema"
	"docurag/pkg/logger"
)

const (
	textSummaryPrompt = "You are an assistant tasked with summarizing content.\n" +
		"Give a concise summary of the following content.\n" +
		"Respond only with the summary, no additional comments.\n" +
		"Content: %s"

	imageSummaryPrompt = "Describe this image concisely and technically."
)

// SummarizationError reports the chunk that failed so callers can tell
// which part of a batch went wrong.
type SummarizationError struct {
	Kind  schema.ChunkKind
	Index int
	Err   error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("failed to summarize %s chunk %d: %v", e.Kind, e.Index, e.Err)
}

func (e *SummarizationError) Unwrap() error {
	return e.Err
}

// LLMSummarizer produces one summary per chunk through a language model,
// running the requests for a batch concurrently under a per-kind cap.
// Image batches get a lower cap because vision requests are heavier.
type LLMSummarizer struct {
	llm        interfaces.LLM
	textLimit  int
	imageLimit int
	log        *logger.Logger
}

// NewLLMSummarizer creates a summarizer on top of the given model. Non
// positive limits fall back to the defaults of 5 for text and table
// batches and 2 for image batches.
func NewLLMSummarizer(llm interfaces.LLM, textLimit, imageLimit int, log *logger.Logger) *LLMSummarizer {
	if textLimit <= 0 {
		textLimit = 5
	}
	if imageLimit <= 0 {
		imageLimit = 2
	}
	return &LLMSummarizer{
		llm:        llm,
		textLimit:  textLimit,
		imageLimit: imageLimit,
		log:        log,
	}
}

// SummarizeBatch summarizes every chunk of a batch and returns the
// summaries in the same order as the input. An empty batch returns an
// empty slice without touching the model. The first failure cancels the
// remaining requests.
func (s *LLMSummarizer) SummarizeBatch(ctx context.Context, kind schema.ChunkKind, chunks []*schema.ContentChunk) ([]string, error) {
	if len(chunks) == 0 {
		return []string{}, nil
	}

	limit := s.textLimit
	if kind == schema.KindImage {
		limit = s.imageLimit
	}

	out := make([]string, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, chunk := range chunks {
		g.Go(func() error {
			summary, err := s.summarizeOne(gctx, kind, chunk)
			if err != nil {
				return &SummarizationError{Kind: kind, Index: i, Err: err}
			}
			out[i] = summary
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.Info(fmt.Sprintf("Summarized %d %s chunks", len(chunks), kind))
	return out, nil
}

func (s *LLMSummarizer) summarizeOne(ctx context.Context, kind schema.ChunkKind, chunk *schema.ContentChunk) (string, error) {
	if kind == schema.KindImage {
		return s.llm.GenerateWithImage(ctx, imageSummaryPrompt, chunk.Image, "image/jpeg")
	}
	return s.llm.Generate(ctx, fmt.Sprintf(textSummaryPrompt, chunk.Text))
}

// compile-time check to ensure LLMSummarizer implements the Summarizer interface
var _ interfaces.Summarizer = (*LLMSummarizer)(nil)
