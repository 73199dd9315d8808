// Package ports defines the interfaces between the domain usecases and the
// adapters. Usecases depend on these abstractions, never on concrete
// implementations.
package ports

import (
	"context"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
)

// EmbeddingService maps text to fixed-length, L2-normalized vectors.
// The underlying model is loaded once per process and reused for all calls;
// implementations are safe for concurrent use after the first call.
type EmbeddingService interface {
	// Embed generates an embedding for a single text (queries).
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one underlying
	// model invocation, preserving input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector dimensionality, 0 if not yet known.
	Dimension() int
}

// VectorIndex stores (embedding, chunk, document id) entries and supports
// exact nearest-neighbor search by cosine similarity. Entries persist across
// process restarts for the persistent implementations.
type VectorIndex interface {
	// Add appends chunks with their embeddings. No deduplication is
	// performed; callers de-duplicate by document id.
	Add(ctx context.Context, chunks []entities.Chunk) error

	// Rebuild atomically replaces the entire index contents. No concurrent
	// Search observes a half-rebuilt state.
	Rebuild(ctx context.Context, chunks []entities.Chunk) error

	// Search returns up to topK results ordered by descending similarity,
	// ties broken by insertion order. Returns ErrIndexNotInitialized if
	// nothing has ever been added or loaded.
	Search(ctx context.Context, embedding []float32, topK int) ([]entities.SimilarityResult, error)

	// Delete removes all chunks of a document.
	Delete(ctx context.Context, documentID string) error

	Count(ctx context.Context) (int, error)
	IsEmpty(ctx context.Context) (bool, error)
	Close() error
}

// AnswerBackend produces an answer from a question and ordered context texts
// (most relevant first). Implementations are selected by configuration; the
// extractive implementation is the deterministic fallback and never fails.
type AnswerBackend interface {
	Name() string
	Answer(ctx context.Context, question string, contexts []string) (string, error)
}

// DocumentLoader reads a document from a file path.
type DocumentLoader interface {
	Load(ctx context.Context, path string) (*entities.Document, error)

	// DocumentID returns the deterministic id a document at path would get,
	// without reading the file. Needed to drop documents whose files are gone.
	DocumentID(path string) string

	SupportedExtensions() []string
}

// FileWatcher monitors a directory for corpus changes.
type FileWatcher interface {
	Watch(ctx context.Context, dir string) (<-chan FileEvent, error)
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
