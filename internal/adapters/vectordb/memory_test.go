package vectordb

import (
	"context"
	"errors"
	"testing"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
)

func TestMemoryIndexSearchBeforeAdd(t *testing.T) {
	idx := NewMemoryIndex()

	_, err := idx.Search(context.Background(), unitVec(0), 3)
	if !errors.Is(err, entities.ErrIndexNotInitialized) {
		t.Fatalf("expected ErrIndexNotInitialized, got %v", err)
	}
}

func TestMemoryIndexAddAndSearch(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	if err := idx.Add(ctx, testChunks()); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := idx.Search(ctx, unitVec(0), 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Chunk.ID != "doc1:0" {
		t.Errorf("best match: got %q, want doc1:0", results[0].Chunk.ID)
	}
}

func TestMemoryIndexTieBreakInsertionOrder(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	same := unitVec(0.3)
	chunks := []entities.Chunk{
		{ID: "a:0", DocumentID: "a", Embedding: same},
		{ID: "a:1", DocumentID: "a", Embedding: same},
	}
	if err := idx.Add(ctx, chunks); err != nil {
		t.Fatalf("Add: %v", err)
	}

	results, err := idx.Search(ctx, same, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results[0].Chunk.ID != "a:0" || results[1].Chunk.ID != "a:1" {
		t.Errorf("ties not in insertion order: %q, %q", results[0].Chunk.ID, results[1].Chunk.ID)
	}
}

func TestMemoryIndexRebuildAndDelete(t *testing.T) {
	idx := NewMemoryIndex()
	ctx := context.Background()

	if err := idx.Add(ctx, testChunks()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Delete(ctx, "doc1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	count, err := idx.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 chunk after delete, got %d", count)
	}

	if err := idx.Rebuild(ctx, nil); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	empty, err := idx.IsEmpty(ctx)
	if err != nil {
		t.Fatalf("IsEmpty: %v", err)
	}
	if !empty {
		t.Fatal("index should be empty after rebuild with no chunks")
	}
	results, err := idx.Search(ctx, unitVec(0), 3)
	if err != nil {
		t.Fatalf("Search after empty rebuild: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
