package vectordb

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
)

// MemoryIndex implements ports.VectorIndex in memory. It keeps entries in
// insertion order, which also serves as the tie-break during search. Useful
// for tests and throwaway corpora; nothing survives a restart.
type MemoryIndex struct {
	mu          sync.RWMutex
	chunks      []entities.Chunk
	initialized bool
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Add appends chunks under the writer lock.
func (m *MemoryIndex) Add(ctx context.Context, chunks []entities.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, chunks...)
	if len(chunks) > 0 {
		m.initialized = true
	}
	return nil
}

// Rebuild replaces all entries atomically.
func (m *MemoryIndex) Rebuild(ctx context.Context, chunks []entities.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append([]entities.Chunk(nil), chunks...)
	// A rebuild counts as population even with zero chunks.
	m.initialized = true
	return nil
}

// Search performs exact cosine search over all entries.
func (m *MemoryIndex) Search(ctx context.Context, embedding []float32, topK int) ([]entities.SimilarityResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", entities.ErrInvalidConfiguration, topK)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.initialized {
		return nil, entities.ErrIndexNotInitialized
	}

	results := make([]entities.SimilarityResult, 0, len(m.chunks))
	for _, chunk := range m.chunks {
		results = append(results, entities.SimilarityResult{
			Chunk: chunk,
			Score: CosineSimilarity(embedding, chunk.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	for i := range results {
		results[i].Rank = i
	}
	return results, nil
}

// Delete removes all chunks of a document.
func (m *MemoryIndex) Delete(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.chunks[:0]
	for _, chunk := range m.chunks {
		if chunk.DocumentID != documentID {
			kept = append(kept, chunk)
		}
	}
	m.chunks = kept
	return nil
}

// Count returns the number of stored entries.
func (m *MemoryIndex) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks), nil
}

// IsEmpty reports whether the index holds no entries.
func (m *MemoryIndex) IsEmpty(ctx context.Context) (bool, error) {
	count, _ := m.Count(ctx)
	return count == 0, nil
}

// Close is a no-op for the in-memory index.
func (m *MemoryIndex) Close() error { return nil }
