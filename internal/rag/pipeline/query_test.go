package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"docurag/internal/rag/schema"
	"docurag/pkg/logger"
)

func newTestQuery(index *fakeIndex, store *fakeStore, llm *fakeLLM) *QueryPipeline {
	return NewQueryPipeline(index, store, llm, 4, time.Hour, logger.New("test"))
}

func TestAnswerPartitionsContext(t *testing.T) {
	index := &fakeIndex{hits: []*schema.IndexEntry{
		{ID: "1", Text: "Apples are red.", SourceID: "s1"},
		{ID: "2", Text: "A fruit chart.", SourceID: "s2", ImageKey: "images/s2.jpg"},
		{ID: "3", Text: "Bananas are yellow.", SourceID: "s3"},
	}}
	llm := &fakeLLM{response: "Apples are red and bananas are yellow."}
	p := newTestQuery(index, newFakeStore(), llm)

	answer, err := p.Answer(context.Background(), "What color are apples?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	wantTexts := []string{"Apples are red.", "Bananas are yellow."}
	if len(answer.Context.Texts) != len(wantTexts) {
		t.Fatalf("got %d text contexts, want %d", len(answer.Context.Texts), len(wantTexts))
	}
	for i, want := range wantTexts {
		if answer.Context.Texts[i] != want {
			t.Errorf("text context %d = %q, want %q", i, answer.Context.Texts[i], want)
		}
	}

	if len(answer.Context.Images) != 1 {
		t.Fatalf("got %d image contexts, want 1", len(answer.Context.Images))
	}
	if want := "https://store.local/images/s2.jpg?sig=test"; answer.Context.Images[0] != want {
		t.Errorf("image context = %q, want %q", answer.Context.Images[0], want)
	}
	if answer.Response != llm.response {
		t.Errorf("response = %q, want model output", answer.Response)
	}
}

func TestAnswerPromptCarriesContextAndQuestion(t *testing.T) {
	index := &fakeIndex{hits: []*schema.IndexEntry{
		{ID: "1", Text: "Apples are red.", SourceID: "s1"},
	}}
	llm := &fakeLLM{response: "Red."}
	p := newTestQuery(index, newFakeStore(), llm)

	if _, err := p.Answer(context.Background(), "What color are apples?"); err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if len(llm.prompts) != 1 {
		t.Fatalf("model called %d times, want exactly 1", len(llm.prompts))
	}
	prompt := llm.prompts[0]
	if !strings.Contains(prompt, "Apples are red.") {
		t.Errorf("prompt %q does not include the retrieved context", prompt)
	}
	if !strings.Contains(prompt, "What color are apples?") {
		t.Errorf("prompt %q does not include the question", prompt)
	}
}

func TestAnswerShortCircuitsWithoutContext(t *testing.T) {
	llm := &fakeLLM{response: "should not be used"}
	p := newTestQuery(&fakeIndex{}, newFakeStore(), llm)

	answer, err := p.Answer(context.Background(), "What is in the documents?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if answer.Response != insufficientContextResponse {
		t.Errorf("response = %q, want the canned insufficient-context answer", answer.Response)
	}
	if len(llm.prompts) != 0 {
		t.Errorf("model called %d times despite empty context", len(llm.prompts))
	}
	if answer.Context.Texts == nil || answer.Context.Images == nil {
		t.Error("context slices must be empty, not nil")
	}
}

func TestAnswerPropagatesPresignFailure(t *testing.T) {
	index := &fakeIndex{hits: []*schema.IndexEntry{
		{ID: "1", Text: "A fruit chart.", SourceID: "s1", ImageKey: "images/s1.jpg"},
	}}
	store := newFakeStore()
	store.presignErr = errors.New("no such key")
	llm := &fakeLLM{}
	p := newTestQuery(index, store, llm)

	if _, err := p.Answer(context.Background(), "Show me the chart"); err == nil {
		t.Fatal("Answer() error = nil, want presign failure")
	}
	if len(llm.prompts) != 0 {
		t.Errorf("model called %d times despite presign failure", len(llm.prompts))
	}
}

func TestAnswerWrapsGenerationFailure(t *testing.T) {
	index := &fakeIndex{hits: []*schema.IndexEntry{
		{ID: "1", Text: "Apples are red.", SourceID: "s1"},
	}}
	llm := &fakeLLM{err: errors.New("model overloaded")}
	p := newTestQuery(index, newFakeStore(), llm)

	_, err := p.Answer(context.Background(), "What color are apples?")
	if err == nil {
		t.Fatal("Answer() error = nil, want generation failure")
	}
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Errorf("error %v is not a *GenerationError", err)
	}
}
