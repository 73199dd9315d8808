// Package usecases contains the application business rules. Usecases
// orchestrate entities through port interfaces and hold no framework code.
package usecases

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/ports"
)

// Chunker prepares document text and splits it into token windows.
type Chunker interface {
	Clean(text string) string
	Chunk(docID, text string) ([]entities.Chunk, error)
}

// IngestUseCase turns documents into indexed, embedded chunks.
type IngestUseCase struct {
	loader   ports.DocumentLoader
	chunker  Chunker
	embedder ports.EmbeddingService
	index    ports.VectorIndex
}

// NewIngestUseCase creates an IngestUseCase with injected dependencies.
func NewIngestUseCase(
	loader ports.DocumentLoader,
	chunker Chunker,
	embedder ports.EmbeddingService,
	index ports.VectorIndex,
) *IngestUseCase {
	return &IngestUseCase{
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		index:    index,
	}
}

// Process ingests every supported file under corpusPath (a directory or a
// single file). A document that fails to load, chunk, or embed is skipped and
// recorded in the report; the remaining documents still go in. With rebuild
// set, the index contents are replaced atomically instead of appended to.
func (uc *IngestUseCase) Process(ctx context.Context, corpusPath string, rebuild bool) (*entities.IngestReport, error) {
	paths, err := uc.collectPaths(corpusPath)
	if err != nil {
		return nil, err
	}

	report := &entities.IngestReport{}
	var all []entities.Chunk
	for _, path := range paths {
		chunks, err := uc.prepare(ctx, path)
		if err != nil {
			log.Printf("[WARN] skipping %s: %v", path, err)
			report.Failures = append(report.Failures, entities.DocumentFailure{Path: path, Reason: err.Error()})
			continue
		}
		if len(chunks) == 0 {
			continue
		}
		all = append(all, chunks...)
		report.DocumentsIndexed++
		report.ChunksIndexed += len(chunks)
	}

	if rebuild {
		if err := uc.index.Rebuild(ctx, all); err != nil {
			return nil, fmt.Errorf("rebuilding index: %w", err)
		}
	} else if len(all) > 0 {
		if err := uc.index.Add(ctx, all); err != nil {
			return nil, fmt.Errorf("storing chunks: %w", err)
		}
	}

	log.Printf("[INFO] ingested %d documents (%d chunks, %d failures)",
		report.DocumentsIndexed, report.ChunksIndexed, len(report.Failures))
	return report, nil
}

// IngestFile loads a single file and indexes it, replacing any previously
// indexed chunks of the same document.
func (uc *IngestUseCase) IngestFile(ctx context.Context, path string) error {
	chunks, err := uc.prepare(ctx, path)
	if err != nil {
		return err
	}
	if err := uc.index.Delete(ctx, uc.loader.DocumentID(path)); err != nil {
		return fmt.Errorf("removing stale chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil
	}
	return uc.index.Add(ctx, chunks)
}

// RemoveFile drops all indexed chunks of the document at path.
func (uc *IngestUseCase) RemoveFile(ctx context.Context, path string) error {
	return uc.index.Delete(ctx, uc.loader.DocumentID(path))
}

// prepare loads, cleans, chunks, and embeds one document.
func (uc *IngestUseCase) prepare(ctx context.Context, path string) ([]entities.Chunk, error) {
	doc, err := uc.loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}

	chunks, err := uc.chunker.Chunk(doc.ID, uc.chunker.Clean(doc.Content))
	if err != nil {
		return nil, fmt.Errorf("chunking document: %w", err)
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	embeddings, err := uc.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}
	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}
	return chunks, nil
}

// collectPaths resolves corpusPath into the ordered list of supported files.
func (uc *IngestUseCase) collectPaths(corpusPath string) ([]string, error) {
	info, err := os.Stat(corpusPath)
	if err != nil {
		return nil, fmt.Errorf("reading corpus path: %w", err)
	}
	if !info.IsDir() {
		return []string{corpusPath}, nil
	}

	supported := make(map[string]bool)
	for _, ext := range uc.loader.SupportedExtensions() {
		supported[ext] = true
	}

	var paths []string
	err = filepath.WalkDir(corpusPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if supported[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking corpus: %w", err)
	}
	return paths, nil
}
