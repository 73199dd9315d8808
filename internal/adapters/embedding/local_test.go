package embedding

import (
	"context"
	"math"
	"testing"
)

func TestLocalModel_VectorsAreUnitLength(t *testing.T) {
	m, err := NewLocalModel(0)
	if err != nil {
		t.Fatalf("new local model: %v", err)
	}

	texts := []string{
		"Paris is the capital of France.",
		"Machine learning algorithms learn from data.",
		"word",
	}
	vectors, err := m.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	for i, v := range vectors {
		if len(v) != DefaultDimension {
			t.Fatalf("text %d: expected dimension %d, got %d", i, DefaultDimension, len(v))
		}
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		if math.Abs(math.Sqrt(sum)-1.0) > 1e-6 {
			t.Errorf("text %d: norm %f, want 1.0", i, math.Sqrt(sum))
		}
	}
}

func TestLocalModel_Deterministic(t *testing.T) {
	m, _ := NewLocalModel(128)
	a, _ := m.Embed(context.Background(), []string{"the quick brown fox"})
	b, _ := m.Embed(context.Background(), []string{"the quick brown fox"})
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("embedding not deterministic at index %d", i)
		}
	}
}

func TestLocalModel_BatchPreservesOrder(t *testing.T) {
	m, _ := NewLocalModel(128)
	ctx := context.Background()

	texts := []string{"alpha beta", "gamma delta", "epsilon zeta"}
	batch, err := m.Embed(ctx, texts)
	if err != nil {
		t.Fatalf("batch embed failed: %v", err)
	}
	for i, text := range texts {
		single, _ := m.Embed(ctx, []string{text})
		for j := range single[0] {
			if batch[i][j] != single[0][j] {
				t.Fatalf("batch result %d differs from single embedding", i)
			}
		}
	}
}

func TestLocalModel_SharedWordsScoreHigher(t *testing.T) {
	m, _ := NewLocalModel(0)
	vectors, err := m.Embed(context.Background(), []string{
		"What is the capital of France?",
		"Paris is the capital of France.",
		"The Eiffel Tower is in Paris.",
	})
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	simCapital := dot(vectors[0], vectors[1])
	simTower := dot(vectors[0], vectors[2])
	if simCapital <= simTower {
		t.Errorf("expected capital chunk to score higher: %f vs %f", simCapital, simTower)
	}
	if simCapital < 0.3 {
		t.Errorf("expected similarity >= 0.3, got %f", simCapital)
	}
}

func TestLocalModel_EmptyTextYieldsZeroVector(t *testing.T) {
	m, _ := NewLocalModel(64)
	vectors, err := m.Embed(context.Background(), []string{""})
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	for _, x := range vectors[0] {
		if x != 0 {
			t.Fatal("expected zero vector for empty text")
		}
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
