package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"docurag/internal/models"
	"docurag/internal/rag/pipeline"
	"docurag/internal/rag/schema"
	"docurag/internal/rag_service/service"
	"docurag/pkg/logger"
)

type fakeService struct {
	report     *pipeline.Report
	processErr error
	answer     *schema.Answer
	queryErr   error
	documents  []*models.DocumentRecord
	listErr    error

	gotFilename string
	gotQuestion string
}

func (f *fakeService) ProcessPDF(ctx context.Context, filename string, r io.Reader) (*pipeline.Report, error) {
	f.gotFilename = filename
	io.Copy(io.Discard, r)
	return f.report, f.processErr
}

func (f *fakeService) Query(ctx context.Context, question string) (*schema.Answer, error) {
	f.gotQuestion = question
	return f.answer, f.queryErr
}

func (f *fakeService) ListDocuments(ctx context.Context, limit int) ([]*models.DocumentRecord, error) {
	return f.documents, f.listErr
}

func newTestRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupRouter(NewHandler(svc, logger.New("test")))
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("failed to build multipart body: %v", err)
	}
	part.Write(content)
	writer.Close()
	return body, writer.FormDataContentType()
}

func TestProcessPDFRequiresFile(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rag/process", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestProcessPDFRejectsNonPDF(t *testing.T) {
	router := newTestRouter(&fakeService{processErr: service.ErrNotPDF})

	body, contentType := multipartUpload(t, "file", "notes.txt", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rag/process", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestProcessPDFSuccess(t *testing.T) {
	svc := &fakeService{report: &pipeline.Report{
		ObjectKey: "pdfs/abc.pdf",
		Chunks: map[schema.ChunkKind]int{
			schema.KindText:  3,
			schema.KindTable: 1,
			schema.KindImage: 2,
		},
	}}
	router := newTestRouter(svc)

	body, contentType := multipartUpload(t, "file", "report.pdf", []byte("%PDF-1.7"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rag/process", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}
	if svc.gotFilename != "report.pdf" {
		t.Errorf("service received filename %q, want report.pdf", svc.gotFilename)
	}

	var resp struct {
		Success  bool   `json:"success"`
		Filename string `json:"filename"`
		Chunks   struct {
			Texts  int `json:"texts"`
			Tables int `json:"tables"`
			Images int `json:"images"`
		} `json:"chunks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success || resp.Filename != "report.pdf" {
		t.Errorf("response = %+v, want success for report.pdf", resp)
	}
	if resp.Chunks.Texts != 3 || resp.Chunks.Tables != 1 || resp.Chunks.Images != 2 {
		t.Errorf("chunk counts = %+v, want 3/1/2", resp.Chunks)
	}
}

func TestProcessPDFReportsPipelineFailure(t *testing.T) {
	router := newTestRouter(&fakeService{processErr: errors.New("summarize stage: model down")})

	body, contentType := multipartUpload(t, "file", "report.pdf", []byte("%PDF-1.7"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rag/process", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(w.Body.String(), "summarize stage") {
		t.Errorf("body %q does not carry failure details", w.Body.String())
	}
}

func TestQueryRequiresQuestion(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rag/query", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestQuerySuccess(t *testing.T) {
	svc := &fakeService{answer: &schema.Answer{
		Response: "Apples are red.",
		Context: schema.QueryContext{
			Texts:  []string{"Apples are red."},
			Images: []string{"https://store.local/images/s1.jpg?sig=test"},
		},
	}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rag/query",
		strings.NewReader(`{"question":"What color are apples?"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}
	if svc.gotQuestion != "What color are apples?" {
		t.Errorf("service received question %q", svc.gotQuestion)
	}

	var resp struct {
		Question string              `json:"question"`
		Answer   string              `json:"answer"`
		Context  schema.QueryContext `json:"context"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Answer != "Apples are red." {
		t.Errorf("answer = %q", resp.Answer)
	}
	if len(resp.Context.Texts) != 1 || len(resp.Context.Images) != 1 {
		t.Errorf("context = %+v, want one text and one image", resp.Context)
	}
}

func TestListDocuments(t *testing.T) {
	svc := &fakeService{documents: []*models.DocumentRecord{
		{ID: 1, Filename: "report.pdf", Status: models.DocumentStatusProcessed, TextChunks: 3},
	}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rag/documents", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Documents []*models.DocumentRecord `json:"documents"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Documents) != 1 || resp.Documents[0].Filename != "report.pdf" {
		t.Errorf("documents = %+v", resp.Documents)
	}
}

func TestListDocumentsEmptyIsArray(t *testing.T) {
	router := newTestRouter(&fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/rag/documents", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), `"documents":[]`) {
		t.Errorf("body %q does not serialize empty list as an array", w.Body.String())
	}
}
