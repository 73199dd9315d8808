package vectordb

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
	"github.com/philippgille/chromem-go"
)

const chromemCollection = "chunks"

// ChromemIndex implements ports.VectorIndex on top of an embedded chromem-go
// database. chromem persists each entry to disk on write, so load is just
// reopening the database. Tie-breaking by insertion order is approximated by
// chunk id order, which chromem does not track rowids for.
type ChromemIndex struct {
	mu          sync.RWMutex
	db          *chromem.DB
	collection  *chromem.Collection
	initialized bool
}

// NewChromemIndex opens (or creates) a persistent chromem database at dbPath.
func NewChromemIndex(dbPath string) (*ChromemIndex, error) {
	if dbPath == "" {
		dbPath = "vector_db"
	}
	db, err := chromem.NewPersistentDB(dbPath, false)
	if err != nil {
		return nil, fmt.Errorf("opening chromem database: %w", err)
	}
	collection, err := db.GetOrCreateCollection(chromemCollection, map[string]string{"hnsw:space": "cosine"}, nil)
	if err != nil {
		return nil, fmt.Errorf("opening collection: %w", err)
	}
	return &ChromemIndex{
		db:          db,
		collection:  collection,
		initialized: collection.Count() > 0,
	}, nil
}

// Add appends chunks with their embeddings.
func (c *ChromemIndex) Add(ctx context.Context, chunks []entities.Chunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.add(ctx, chunks); err != nil {
		return err
	}
	if len(chunks) > 0 {
		c.initialized = true
	}
	return nil
}

func (c *ChromemIndex) add(ctx context.Context, chunks []entities.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	ids := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))
	metadatas := make([]map[string]string, len(chunks))
	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.ID
		embeddings[i] = chunk.Embedding
		contents[i] = chunk.Content
		metadatas[i] = map[string]string{
			"document_id": chunk.DocumentID,
			"seq":         strconv.Itoa(chunk.Seq),
			"token_count": strconv.Itoa(chunk.TokenCount),
			"prev_id":     chunk.PrevID,
			"next_id":     chunk.NextID,
		}
	}
	if err := c.collection.Add(ctx, ids, embeddings, metadatas, contents); err != nil {
		return fmt.Errorf("adding chunks: %w", err)
	}
	return nil
}

// Rebuild drops the collection and re-adds all chunks. The writer lock keeps
// searches from observing the intermediate state.
func (c *ChromemIndex) Rebuild(ctx context.Context, chunks []entities.Chunk) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.db.DeleteCollection(chromemCollection); err != nil {
		return fmt.Errorf("dropping collection: %w", err)
	}
	collection, err := c.db.GetOrCreateCollection(chromemCollection, map[string]string{"hnsw:space": "cosine"}, nil)
	if err != nil {
		return fmt.Errorf("recreating collection: %w", err)
	}
	c.collection = collection
	if err := c.add(ctx, chunks); err != nil {
		return err
	}
	// A rebuild counts as population even with zero chunks.
	c.initialized = true
	return nil
}

// Search queries chromem with the embedding; nResults is clamped to the
// collection size because chromem rejects oversized requests.
func (c *ChromemIndex) Search(ctx context.Context, embedding []float32, topK int) ([]entities.SimilarityResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", entities.ErrInvalidConfiguration, topK)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.initialized {
		return nil, entities.ErrIndexNotInitialized
	}

	n := topK
	if count := c.collection.Count(); n > count {
		n = count
	}
	if n == 0 {
		return nil, nil
	}

	found, err := c.collection.QueryEmbedding(ctx, embedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}

	results := make([]entities.SimilarityResult, 0, len(found))
	for _, r := range found {
		chunk := entities.Chunk{
			ID:      r.ID,
			Content: r.Content,
		}
		if r.Metadata != nil {
			chunk.DocumentID = r.Metadata["document_id"]
			chunk.PrevID = r.Metadata["prev_id"]
			chunk.NextID = r.Metadata["next_id"]
			chunk.Seq, _ = strconv.Atoi(r.Metadata["seq"])
			chunk.TokenCount, _ = strconv.Atoi(r.Metadata["token_count"])
		}
		results = append(results, entities.SimilarityResult{
			Chunk: chunk,
			Score: float64(r.Similarity),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	for i := range results {
		results[i].Rank = i
	}
	return results, nil
}

// Delete removes all chunks of a document via a metadata filter.
func (c *ChromemIndex) Delete(ctx context.Context, documentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collection.Delete(ctx, map[string]string{"document_id": documentID}, nil)
}

// Count returns the number of stored entries.
func (c *ChromemIndex) Count(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.collection.Count(), nil
}

// IsEmpty reports whether the index holds no entries.
func (c *ChromemIndex) IsEmpty(ctx context.Context) (bool, error) {
	count, err := c.Count(ctx)
	return count == 0, err
}

// Close is a no-op; chromem persists on every write.
func (c *ChromemIndex) Close() error { return nil }
