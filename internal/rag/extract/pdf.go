package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/unidoc/unipdf/v4/extractor"
	"github.com/unidoc/unipdf/v4/model"

	"docurag/internal/rag/interfaces"
	"docurag/internal/rag/schema"
	"docurag/pkg/logger"
)

// ExtractionError is returned when a document cannot be parsed. Extraction
// is all-or-nothing: callers never see a partial chunk list.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract content from '%s': %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// PDFExtractor turns a PDF file into typed content chunks: one text chunk
// per page with a text layer, one table chunk per detected table, and one
// image chunk per embedded image (re-encoded as JPEG).
type PDFExtractor struct {
	log *logger.Logger
}

// NewPDFExtractor creates a new PDFExtractor.
func NewPDFExtractor(log *logger.Logger) *PDFExtractor {
	return &PDFExtractor{log: log}
}

// Extract parses the PDF at path and returns its content chunks. The chunk
// kind is decided here, once, for the rest of the pipeline.
func (e *PDFExtractor) Extract(ctx context.Context, path string) ([]*schema.ContentChunk, error) {
	source := filepath.Base(path)

	texts, err := extractText(ctx, path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	tables, images, err := extractTablesAndImages(ctx, path)
	if err != nil {
		return nil, &ExtractionError{Path: path, Err: err}
	}

	chunks := make([]*schema.ContentChunk, 0, len(texts)+len(tables)+len(images))
	for _, text := range texts {
		chunks = append(chunks, &schema.ContentChunk{
			Kind:           schema.KindText,
			Text:           text,
			SourceDocument: source,
		})
	}
	for _, table := range tables {
		chunks = append(chunks, &schema.ContentChunk{
			Kind:           schema.KindTable,
			Text:           table,
			SourceDocument: source,
		})
	}
	for _, img := range images {
		chunks = append(chunks, &schema.ContentChunk{
			Kind:           schema.KindImage,
			Image:          img,
			SourceDocument: source,
		})
	}

	e.log.Info(fmt.Sprintf("Extracted %d text, %d table, %d image chunks from %s",
		len(texts), len(tables), len(images), source))

	return chunks, nil
}

// extractText reads the plain-text layer page by page. Pages without a
// usable text layer are skipped.
func extractText(ctx context.Context, path string) ([]string, error) {
	f, reader, err := ledongthuc.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var texts []string
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		texts = append(texts, text)
	}

	return texts, nil
}

// extractTablesAndImages walks every page and collects detected tables as
// flattened strings and embedded images as JPEG bytes.
func extractTablesAndImages(ctx context.Context, path string) ([]string, [][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return nil, nil, err
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, nil, err
	}

	var tables []string
	var images [][]byte
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		page, err := pdfReader.GetPage(i)
		if err != nil {
			return nil, nil, fmt.Errorf("page %d: %w", i, err)
		}

		ex, err := extractor.New(page)
		if err != nil {
			return nil, nil, fmt.Errorf("page %d: %w", i, err)
		}

		pageText, _, _, err := ex.ExtractPageText()
		if err != nil {
			return nil, nil, fmt.Errorf("page %d: %w", i, err)
		}
		for _, table := range pageText.Tables() {
			flat := FlattenTable(tableCellText(table))
			if flat == "" {
				continue
			}
			tables = append(tables, flat)
		}

		pageImages, err := ex.ExtractPageImages(nil)
		if err != nil {
			// Pages without extractable images are common; text and
			// tables for the page were already collected.
			continue
		}
		for _, pImg := range pageImages.Images {
			goImg, err := pImg.Image.ToGoImage()
			if err != nil {
				continue
			}
			data, err := encodeJPEG(goImg)
			if err != nil {
				continue
			}
			images = append(images, data)
		}
	}

	return tables, images, nil
}

// tableCellText converts an extracted table into its cell text matrix.
func tableCellText(table extractor.TextTable) [][]string {
	rows := make([][]string, 0, len(table.Cells))
	for _, row := range table.Cells {
		cells := make([]string, 0, len(row))
		for _, cell := range row {
			cells = append(cells, cell.Text)
		}
		rows = append(rows, cells)
	}
	return rows
}

// FlattenTable renders a cell matrix as a single string, one line per row
// with tab-separated cells. Returns "" for tables with no cell content.
func FlattenTable(rows [][]string) string {
	var sb strings.Builder
	empty := true
	for i, row := range rows {
		if i > 0 {
			sb.WriteString("\n")
		}
		for j, cell := range row {
			if j > 0 {
				sb.WriteString("\t")
			}
			sb.WriteString(strings.TrimSpace(cell))
			if strings.TrimSpace(cell) != "" {
				empty = false
			}
		}
	}
	if empty {
		return ""
	}
	return sb.String()
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// compile-time check to ensure PDFExtractor implements the Extractor interface
var _ interfaces.Extractor = (*PDFExtractor)(nil)
