package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docurag/internal/rag/interfaces"
	"docurag/internal/rag/schema"
	"docurag/pkg/logger"
)

// insufficientContextResponse is returned verbatim when retrieval produces
// no usable context, without consulting the model.
const insufficientContextResponse = "I don't have enough context to answer your question. " +
	"Please try asking something related to the documents that have been processed."

const answerPromptTemplate = "Answer the question based only on the following context, " +
	"which can include text, tables, and the below image.\nContext: %s\nQuestion: %s"

// GenerationError is returned when the answer model call fails.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("answer generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// QueryPipeline answers a question from the indexed corpus: retrieve,
// partition the hits into text context and presigned image URLs, then make
// a single generation call grounded on that context.
type QueryPipeline struct {
	index  interfaces.VectorIndex
	store  interfaces.ObjectStore
	llm    interfaces.LLM
	log    *logger.Logger
	topK   int
	urlTTL time.Duration
}

// NewQueryPipeline creates a new QueryPipeline. Non-positive topK falls back
// to 4 retrieved entries; non-positive ttl falls back to one hour for the
// presigned image URLs.
func NewQueryPipeline(
	index interfaces.VectorIndex,
	store interfaces.ObjectStore,
	llm interfaces.LLM,
	topK int,
	urlTTL time.Duration,
	log *logger.Logger,
) *QueryPipeline {
	if topK <= 0 {
		topK = 4
	}
	if urlTTL <= 0 {
		urlTTL = time.Hour
	}
	return &QueryPipeline{
		index:  index,
		store:  store,
		llm:    llm,
		log:    log,
		topK:   topK,
		urlTTL: urlTTL,
	}
}

// Answer runs the query pipeline for one question. The returned context
// slices are never nil, so an empty answer still serializes as empty arrays.
func (p *QueryPipeline) Answer(ctx context.Context, question string) (*schema.Answer, error) {
	hits, err := p.index.Query(ctx, question, p.topK)
	if err != nil {
		return nil, err
	}

	queryCtx := schema.QueryContext{
		Texts:  []string{},
		Images: []string{},
	}
	for _, hit := range hits {
		if hit.ImageKey != "" {
			url, err := p.store.PresignedGetURL(ctx, hit.ImageKey, p.urlTTL)
			if err != nil {
				return nil, err
			}
			queryCtx.Images = append(queryCtx.Images, url)
			continue
		}
		queryCtx.Texts = append(queryCtx.Texts, hit.Text)
	}

	if len(queryCtx.Texts) == 0 && len(queryCtx.Images) == 0 {
		p.log.Info(fmt.Sprintf("No context retrieved for question: %s", question))
		return &schema.Answer{Response: insufficientContextResponse, Context: queryCtx}, nil
	}

	prompt := fmt.Sprintf(answerPromptTemplate, strings.Join(queryCtx.Texts, "\n"), question)
	response, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	return &schema.Answer{Response: response, Context: queryCtx}, nil
}
