// Package vectordb provides the vector index adapters: a SQLite-backed
// persistent index, a chromem-go persistent index, and an in-memory index.
// All perform exact cosine search; at the expected corpus scale (hundreds to
// low thousands of chunks) approximate nearest-neighbor structures buy
// nothing.
package vectordb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteIndex implements ports.VectorIndex with SQLite persistence. The
// storage handle stays open for the lifetime of the index; entries written by
// a previous process are searchable immediately after construction, no
// rebuild required. Insertion order is preserved through rowid and breaks
// similarity ties.
type SQLiteIndex struct {
	mu          sync.RWMutex
	db          *sql.DB
	initialized bool
}

// NewSQLiteIndex opens (or creates) the index under dataPath and loads any
// persisted entries.
func NewSQLiteIndex(dataPath string) (*SQLiteIndex, error) {
	if dataPath == "" {
		dataPath = "vector_db"
	}
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dataPath, "vectors.db"))
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	idx := &SQLiteIndex{db: db}
	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	count, err := idx.Count(context.Background())
	if err != nil {
		db.Close()
		return nil, err
	}
	idx.initialized = count > 0
	return idx, nil
}

func (s *SQLiteIndex) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chunks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		content TEXT NOT NULL,
		seq INTEGER NOT NULL,
		token_count INTEGER NOT NULL,
		prev_id TEXT,
		next_id TEXT,
		embedding BLOB NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_document_id ON chunks(document_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Add appends chunks with their embeddings. The writer holds exclusive access
// for the whole batch so a concurrent Search never observes a partial write.
func (s *SQLiteIndex) Add(ctx context.Context, chunks []entities.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.insert(ctx, chunks); err != nil {
		return err
	}
	if len(chunks) > 0 {
		s.initialized = true
	}
	return nil
}

// Rebuild replaces the entire index contents in one transaction
// (swap-on-completion: readers see either the old or the new corpus).
func (s *SQLiteIndex) Rebuild(ctx context.Context, chunks []entities.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing index: %w", err)
	}
	if err := insertTx(ctx, tx, chunks); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing rebuild: %w", err)
	}
	// A rebuild counts as population even with zero chunks: the corpus was
	// processed and is known empty, which is distinct from never processed.
	s.initialized = true
	return nil
}

func (s *SQLiteIndex) insert(ctx context.Context, chunks []entities.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertTx(ctx, tx, chunks); err != nil {
		return err
	}
	return tx.Commit()
}

func insertTx(ctx context.Context, tx *sql.Tx, chunks []entities.Chunk) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks (id, document_id, content, seq, token_count, prev_id, next_id, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		embeddingJSON, err := json.Marshal(chunk.Embedding)
		if err != nil {
			return fmt.Errorf("encoding embedding: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			chunk.ID, chunk.DocumentID, chunk.Content, chunk.Seq,
			chunk.TokenCount, chunk.PrevID, chunk.NextID, embeddingJSON,
		)
		if err != nil {
			return fmt.Errorf("inserting chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}

// Search computes exact cosine similarity against every stored entry and
// returns at most topK results in descending score order, earlier-inserted
// entries first on ties.
func (s *SQLiteIndex) Search(ctx context.Context, embedding []float32, topK int) ([]entities.SimilarityResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", entities.ErrInvalidConfiguration, topK)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, entities.ErrIndexNotInitialized
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, content, seq, token_count, prev_id, next_id, embedding
		FROM chunks ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []entities.SimilarityResult
	for rows.Next() {
		var chunk entities.Chunk
		var embeddingJSON []byte
		err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content, &chunk.Seq,
			&chunk.TokenCount, &chunk.PrevID, &chunk.NextID, &embeddingJSON)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if err := json.Unmarshal(embeddingJSON, &chunk.Embedding); err != nil {
			continue // skip corrupted embeddings
		}
		results = append(results, entities.SimilarityResult{
			Chunk: chunk,
			Score: CosineSimilarity(embedding, chunk.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	// Stable sort keeps insertion order among equal scores.
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
func (s *SQLiteIndex) Delete(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID)
	return err
}

// Count returns the number of stored entries.
func (s *SQLiteIndex) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&count)
	return count, err
}

// IsEmpty reports whether the index holds no entries.
func (s *SQLiteIndex) IsEmpty(ctx context.Context) (bool, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// Close releases the storage handle.
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

// CosineSimilarity computes the cosine similarity between two vectors.
// For L2-normalized inputs this reduces to the dot product, but the norms are
// computed anyway so unnormalized vectors still compare correctly.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
