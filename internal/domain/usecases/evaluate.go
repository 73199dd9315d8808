package usecases

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/ports"
)

// EvaluateUseCase scores a question/answer pair. Relevance is the cosine
// similarity between question and answer embeddings, coverage the fraction of
// question keywords present in the source chunks, quality their weighted mix.
type EvaluateUseCase struct {
	embedder        ports.EmbeddingService
	relevanceWeight float64
	coverageWeight  float64
}

// NewEvaluateUseCase creates an EvaluateUseCase. Weights must be non-negative
// with a positive sum; they are normalized to sum to 1.
func NewEvaluateUseCase(embedder ports.EmbeddingService, relevanceWeight, coverageWeight float64) (*EvaluateUseCase, error) {
	if relevanceWeight < 0 || coverageWeight < 0 || relevanceWeight+coverageWeight == 0 {
		return nil, fmt.Errorf("%w: evaluation weights must be non-negative with a positive sum", entities.ErrInvalidConfiguration)
	}
	sum := relevanceWeight + coverageWeight
	return &EvaluateUseCase{
		embedder:        embedder,
		relevanceWeight: relevanceWeight / sum,
		coverageWeight:  coverageWeight / sum,
	}, nil
}

// Evaluate scores the answer against the question and its sources. An
// insufficient-information answer scores zero across the board.
func (uc *EvaluateUseCase) Evaluate(ctx context.Context, question string, result *entities.QAResult) (*entities.EvaluationReport, error) {
	if result == nil || result.Answer == "" || result.Answer == InsufficientInformationAnswer {
		return &entities.EvaluationReport{}, nil
	}

	embeddings, err := uc.embedder.EmbedBatch(ctx, []string{question, result.Answer})
	if err != nil {
		return nil, fmt.Errorf("embedding for evaluation: %w", err)
	}
	relevance := clamp01(dot(embeddings[0], embeddings[1]))

	coverage := keywordCoverage(question, result.Sources)

	return &entities.EvaluationReport{
		Relevance: relevance,
		Coverage:  coverage,
		Quality:   uc.relevanceWeight*relevance + uc.coverageWeight*coverage,
	}, nil
}

// keywordCoverage is the fraction of question keywords that occur in the
// concatenated source chunk text. No keywords means full coverage.
func keywordCoverage(question string, sources []entities.Chunk) float64 {
	keywords := questionKeywords(question)
	if len(keywords) == 0 {
		return 1
	}

	var corpus strings.Builder
	for _, chunk := range sources {
		corpus.WriteString(strings.ToLower(chunk.Content))
		corpus.WriteByte(' ')
	}
	text := corpus.String()

	matched := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords))
}

// questionKeywords lowercases the question and keeps words longer than three
// characters, stripped of punctuation.
func questionKeywords(question string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(question)) {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if len(w) > 3 && !seen[w] {
			seen[w] = true
			keywords = append(keywords, w)
		}
	}
	return keywords
}

func dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
