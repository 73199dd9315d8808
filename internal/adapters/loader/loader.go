// Package loader provides document loading adapters.
package loader

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
	"github.com/ledongthuc/pdf"
)

// TextLoader loads plain text documents (.txt, .md).
type TextLoader struct{}

// NewTextLoader creates a new text document loader.
func NewTextLoader() *TextLoader {
	return &TextLoader{}
}

// Load reads a text document from the given path.
func (l *TextLoader) Load(ctx context.Context, path string) (*entities.Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	return &entities.Document{
		ID:        generateDocID(path),
		Name:      filepath.Base(path),
		Path:      path,
		Content:   string(content),
		CreatedAt: info.ModTime(),
		UpdatedAt: time.Now(),
	}, nil
}

// DocumentID returns the deterministic id for a document at path.
func (l *TextLoader) DocumentID(path string) string {
	return generateDocID(path)
}

// SupportedExtensions returns file extensions this loader handles.
func (l *TextLoader) SupportedExtensions() []string {
	return []string{".txt", ".md", ".markdown"}
}

// PDFLoader extracts plain text from PDF documents.
type PDFLoader struct{}

// NewPDFLoader creates a PDF document loader.
func NewPDFLoader() *PDFLoader {
	return &PDFLoader{}
}

// Load extracts the text content of a PDF.
func (l *PDFLoader) Load(ctx context.Context, path string) (*entities.Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening pdf %s: %v", entities.ErrMalformedDocument, path, err)
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("%w: extracting text from %s: %v", entities.ErrMalformedDocument, path, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return nil, fmt.Errorf("%w: reading text from %s: %v", entities.ErrMalformedDocument, path, err)
	}

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return &entities.Document{
		ID:        generateDocID(path),
		Name:      filepath.Base(path),
		Path:      path,
		Content:   buf.String(),
		CreatedAt: info.ModTime(),
		UpdatedAt: time.Now(),
	}, nil
}

// DocumentID returns the deterministic id for a document at path.
func (l *PDFLoader) DocumentID(path string) string {
	return generateDocID(path)
}

// SupportedExtensions returns file extensions this loader handles.
func (l *PDFLoader) SupportedExtensions() []string {
	return []string{".pdf"}
}

// MultiLoader dispatches to a loader by file extension.
type MultiLoader struct {
	loaders map[string]interface {
		Load(context.Context, string) (*entities.Document, error)
	}
}

// NewMultiLoader creates a loader that handles all supported file types.
func NewMultiLoader() *MultiLoader {
	text := NewTextLoader()
	m := &MultiLoader{
		loaders: map[string]interface {
			Load(context.Context, string) (*entities.Document, error)
		}{
			".pdf": NewPDFLoader(),
		},
	}
	for _, ext := range text.SupportedExtensions() {
		m.loaders[ext] = text
	}
	return m
}

// Load dispatches to the appropriate loader based on extension. Unsupported
// extensions are reported as malformed so ingestion can skip them.
func (m *MultiLoader) Load(ctx context.Context, path string) (*entities.Document, error) {
	ext := strings.ToLower(filepath.Ext(path))
	loader, ok := m.loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file type %q", entities.ErrMalformedDocument, ext)
	}
	return loader.Load(ctx, path)
}

// DocumentID returns the deterministic id for a document at path.
func (m *MultiLoader) DocumentID(path string) string {
	return generateDocID(path)
}

// SupportedExtensions returns all supported extensions.
func (m *MultiLoader) SupportedExtensions() []string {
	exts := make([]string, 0, len(m.loaders))
	for ext := range m.loaders {
		exts = append(exts, ext)
	}
	return exts
}

// generateDocID creates a deterministic ID for a document.
func generateDocID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:8])
}
