package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"docurag/internal/rag/schema"
	"docurag/pkg/logger"
)

type fakeLLM struct {
	mu       sync.Mutex
	calls    int
	active   int32
	maxSeen  int32
	delay    time.Duration
	failText string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string) (string, error) {
	return f.answer(prompt)
}

func (f *fakeLLM) GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	return f.answer(string(image))
}

func (f *fakeLLM) answer(input string) (string, error) {
	cur := atomic.AddInt32(&f.active, 1)
	defer atomic.AddInt32(&f.active, -1)
	for {
		seen := atomic.LoadInt32(&f.maxSeen)
		if cur <= seen || atomic.CompareAndSwapInt32(&f.maxSeen, seen, cur) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failText != "" && strings.Contains(input, f.failText) {
		return "", errors.New("model refused")
	}
	return "summary of " + input, nil
}

func textChunks(texts ...string) []*schema.ContentChunk {
	chunks := make([]*schema.ContentChunk, 0, len(texts))
	for _, t := range texts {
		chunks = append(chunks, &schema.ContentChunk{Kind: schema.KindText, Text: t, SourceDocument: "doc.pdf"})
	}
	return chunks
}

func TestSummarizeBatchEmpty(t *testing.T) {
	llm := &fakeLLM{}
	s := NewLLMSummarizer(llm, 5, 2, logger.New("test"))

	out, err := s.SummarizeBatch(context.Background(), schema.KindText, nil)
	if err != nil {
		t.Fatalf("SummarizeBatch() error = %v", err)
	}
	if out == nil || len(out) != 0 {
		t.Errorf("SummarizeBatch() = %v, want empty slice", out)
	}
	if llm.calls != 0 {
		t.Errorf("model called %d times for empty batch, want 0", llm.calls)
	}
}

func TestSummarizeBatchPreservesOrder(t *testing.T) {
	llm := &fakeLLM{delay: time.Millisecond}
	s := NewLLMSummarizer(llm, 5, 2, logger.New("test"))

	chunks := textChunks("alpha", "beta", "gamma", "delta", "epsilon", "zeta")
	out, err := s.SummarizeBatch(context.Background(), schema.KindText, chunks)
	if err != nil {
		t.Fatalf("SummarizeBatch() error = %v", err)
	}
	if len(out) != len(chunks) {
		t.Fatalf("got %d summaries, want %d", len(out), len(chunks))
	}
	for i, chunk := range chunks {
		want := "summary of " + fmt.Sprintf(textSummaryPrompt, chunk.Text)
		if out[i] != want {
			t.Errorf("summary %d = %q, want %q", i, out[i], want)
		}
	}
}

func TestSummarizeBatchConcurrencyCap(t *testing.T) {
	llm := &fakeLLM{delay: 5 * time.Millisecond}
	s := NewLLMSummarizer(llm, 3, 2, logger.New("test"))

	chunks := textChunks("a", "b", "c", "d", "e", "f", "g", "h", "i", "j")
	if _, err := s.SummarizeBatch(context.Background(), schema.KindText, chunks); err != nil {
		t.Fatalf("SummarizeBatch() error = %v", err)
	}
	if max := atomic.LoadInt32(&llm.maxSeen); max > 3 {
		t.Errorf("observed %d concurrent requests, cap is 3", max)
	}
}

func TestSummarizeBatchImageUsesVisionPath(t *testing.T) {
	llm := &fakeLLM{}
	s := NewLLMSummarizer(llm, 5, 2, logger.New("test"))

	chunks := []*schema.ContentChunk{
		{Kind: schema.KindImage, Image: []byte("jpegbytes"), SourceDocument: "doc.pdf"},
	}
	out, err := s.SummarizeBatch(context.Background(), schema.KindImage, chunks)
	if err != nil {
		t.Fatalf("SummarizeBatch() error = %v", err)
	}
	if out[0] != "summary of jpegbytes" {
		t.Errorf("summary = %q, want vision output", out[0])
	}
}

func TestSummarizeBatchErrorCarriesKindAndIndex(t *testing.T) {
	llm := &fakeLLM{failText: "gamma"}
	s := NewLLMSummarizer(llm, 1, 2, logger.New("test"))

	_, err := s.SummarizeBatch(context.Background(), schema.KindText, textChunks("alpha", "beta", "gamma"))
	if err == nil {
		t.Fatal("SummarizeBatch() error = nil, want failure")
	}
	var serr *SummarizationError
	if !errors.As(err, &serr) {
		t.Fatalf("error %v is not a *SummarizationError", err)
	}
	if serr.Kind != schema.KindText || serr.Index != 2 {
		t.Errorf("error = kind %s index %d, want kind text index 2", serr.Kind, serr.Index)
	}
}
