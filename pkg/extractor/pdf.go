package extractor

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"pdfrag/internal/models"
)

// PDFExtractor reads the plain text of a PDF file.
type PDFExtractor struct{}

func NewPDF() *PDFExtractor {
	return &PDFExtractor{}
}

func (e *PDFExtractor) Extract(path string) (string, error) {
	f, rdr, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf %s: %v", path, err)
	}
	defer f.Close()

	r, err := rdr.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read pdf text: %v", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", fmt.Errorf("failed to buffer pdf text: %v", err)
	}

	text := buf.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text extracted from %s", path)
	}

	return text, nil
}

// Document wraps the extracted text as a Document keyed by file name.
func (e *PDFExtractor) Document(path string) (models.Document, error) {
	text, err := e.Extract(path)
	if err != nil {
		return models.Document{}, err
	}

	name := filepath.Base(path)
	return models.Document{
		ID:      name,
		Source:  name,
		Content: text,
		Metadata: map[string]interface{}{
			"path": path,
		},
	}, nil
}
