package usecases

import (
	"context"
	"fmt"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/ports"
)

const minCandidates = 10

// RetrieveUseCase finds the chunks most relevant to a question. Results below
// the similarity threshold are dropped even when that leaves fewer than topK.
type RetrieveUseCase struct {
	embedder      ports.EmbeddingService
	index         ports.VectorIndex
	topK          int
	minSimilarity float64
}

// NewRetrieveUseCase creates a RetrieveUseCase. topK must be positive and
// minSimilarity must lie in [0, 1].
func NewRetrieveUseCase(
	embedder ports.EmbeddingService,
	index ports.VectorIndex,
	topK int,
	minSimilarity float64,
) (*RetrieveUseCase, error) {
	if topK < 1 {
		return nil, fmt.Errorf("%w: top_k must be at least 1, got %d", entities.ErrInvalidConfiguration, topK)
	}
	if minSimilarity < 0 || minSimilarity > 1 {
		return nil, fmt.Errorf("%w: min_similarity must be in [0, 1], got %f", entities.ErrInvalidConfiguration, minSimilarity)
	}
	return &RetrieveUseCase{
		embedder:      embedder,
		index:         index,
		topK:          topK,
		minSimilarity: minSimilarity,
	}, nil
}

// Retrieve embeds the question and returns at most topK chunks at or above
// the similarity threshold, best first. An empty result is not an error.
func (uc *RetrieveUseCase) Retrieve(ctx context.Context, question string) ([]entities.SimilarityResult, error) {
	return uc.RetrieveTopK(ctx, question, uc.topK)
}

// RetrieveTopK is Retrieve with a per-call topK override. topK below 1 falls
// back to the configured value.
func (uc *RetrieveUseCase) RetrieveTopK(ctx context.Context, question string, topK int) ([]entities.SimilarityResult, error) {
	if topK < 1 {
		topK = uc.topK
	}

	embedding, err := uc.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	// Over-fetch so threshold filtering can still fill topK slots.
	candidates := 3 * topK
	if candidates < minCandidates {
		candidates = minCandidates
	}
	results, err := uc.index.Search(ctx, embedding, candidates)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	filtered := results[:0]
	for _, r := range results {
		if r.Score >= uc.minSimilarity {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) > topK {
		filtered = filtered[:topK]
	}
	for i := range filtered {
		filtered[i].Rank = i
	}
	return filtered, nil
}

// TopK returns the configured result count.
func (uc *RetrieveUseCase) TopK() int { return uc.topK }

// MinSimilarity returns the configured similarity threshold.
func (uc *RetrieveUseCase) MinSimilarity() float64 { return uc.minSimilarity }
