package embedding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
)

type countingBackend struct {
	dim int
}

func (b *countingBackend) Name() string   { return "counting" }
func (b *countingBackend) Dimension() int { return b.dim }

func (b *countingBackend) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, b.dim)
		v[0] = 2.0 // not normalized; the Service must normalize
		out[i] = v
	}
	return out, nil
}

func TestService_LoadsBackendExactlyOnce(t *testing.T) {
	var loads int32
	svc := NewService(func() (Backend, error) {
		atomic.AddInt32(&loads, 1)
		return &countingBackend{dim: 8}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Embed(context.Background(), "hello"); err != nil {
				t.Errorf("embed failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&loads); got != 1 {
		t.Errorf("backend loaded %d times, want 1", got)
	}
}

func TestService_InitFailurePropagates(t *testing.T) {
	var loads int32
	svc := NewService(func() (Backend, error) {
		atomic.AddInt32(&loads, 1)
		return nil, errors.New("model artifact missing")
	})

	for i := 0; i < 3; i++ {
		_, err := svc.Embed(context.Background(), "hello")
		if !errors.Is(err, entities.ErrEmbeddingBackend) {
			t.Fatalf("call %d: expected ErrEmbeddingBackend, got %v", i, err)
		}
	}
	// Failure is remembered; the factory is not retried.
	if got := atomic.LoadInt32(&loads); got != 1 {
		t.Errorf("factory ran %d times, want 1", got)
	}
}

func TestService_NormalizesBackendOutput(t *testing.T) {
	svc := NewService(func() (Backend, error) {
		return &countingBackend{dim: 4}, nil
	})
	v, err := svc.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if v[0] != 1.0 {
		t.Errorf("expected normalized vector, got %v", v)
	}
}

func TestService_EmbedBatchOrder(t *testing.T) {
	svc := NewService(func() (Backend, error) {
		m, err := NewLocalModel(64)
		return m, err
	})
	texts := []string{"first text", "second text", "third text"}
	batch, err := svc.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if len(batch) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(batch))
	}
	for i, text := range texts {
		single, _ := svc.Embed(context.Background(), text)
		for j := range single {
			if batch[i][j] != single[j] {
				t.Fatalf("vector %d out of order", i)
			}
		}
	}
}

func TestService_DimensionBeforeLoad(t *testing.T) {
	svc := NewService(func() (Backend, error) {
		return &countingBackend{dim: 8}, nil
	})
	if svc.Dimension() != 0 {
		t.Error("dimension should be 0 before first use")
	}
	svc.Embed(context.Background(), "warm up")
	if svc.Dimension() != 8 {
		t.Errorf("expected dimension 8, got %d", svc.Dimension())
	}
}

func TestService_DimensionConcurrentWithFirstEmbed(t *testing.T) {
	svc := NewService(func() (Backend, error) {
		return &countingBackend{dim: 8}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if d := svc.Dimension(); d != 0 && d != 8 {
				t.Errorf("dimension = %d, want 0 or 8", d)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := svc.Embed(context.Background(), "hello"); err != nil {
				t.Errorf("embed failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := svc.Dimension(); got != 8 {
		t.Errorf("dimension after load = %d, want 8", got)
	}
}
