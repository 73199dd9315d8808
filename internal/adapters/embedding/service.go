package embedding

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
)

// Backend is a raw embedding model. A single Embed call corresponds to one
// underlying model invocation, so implementations must accept batches.
type Backend interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Service implements ports.EmbeddingService on top of a Backend. The backend
// is constructed exactly once, on first use, even under concurrent callers;
// after that the Service is safe for concurrent reads. Construction failure
// is remembered and returned on every call, since a missing model artifact is
// not recoverable within the process.
type Service struct {
	factory func() (Backend, error)

	once    sync.Once
	backend atomic.Value // Backend, stored at most once by load
	initErr error
}

// NewService wraps a backend factory. The factory runs on the first Embed or
// EmbedBatch call.
func NewService(factory func() (Backend, error)) *Service {
	return &Service{factory: factory}
}

func (s *Service) load() (Backend, error) {
	s.once.Do(func() {
		b, err := s.factory()
		if err != nil {
			s.initErr = fmt.Errorf("%w: %v", entities.ErrEmbeddingBackend, err)
			return
		}
		log.Printf("[INFO] embedding backend %q loaded (dimension %d)", b.Name(), b.Dimension())
		s.backend.Store(b)
	})
	if b, ok := s.backend.Load().(Backend); ok {
		return b, nil
	}
	return nil, s.initErr
}

// Embed generates a normalized embedding for a single text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates normalized embeddings for multiple texts in one
// backend invocation, preserving input order.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	backend, err := s.load()
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, nil
	}
	vectors, err := backend.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrEmbeddingBackend, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: backend returned %d vectors for %d texts",
			entities.ErrEmbeddingBackend, len(vectors), len(texts))
	}
	for _, v := range vectors {
		l2Normalize(v)
	}
	return vectors, nil
}

// Dimension reports the backend dimensionality, 0 before the backend has
// been loaded. Safe to call concurrently with the first Embed.
func (s *Service) Dimension() int {
	if b, ok := s.backend.Load().(Backend); ok {
		return b.Dimension()
	}
	return 0
}
