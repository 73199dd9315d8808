package usecases

import (
	"context"
	"log"
	"time"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/ports"
)

// InsufficientInformationAnswer is returned when retrieval found nothing
// above the similarity threshold.
const InsufficientInformationAnswer = "I couldn't find relevant information to answer your question."

const (
	// DefaultFallbackPenalty discounts confidence when the extractive
	// fallback produced the answer instead of the primary backend.
	DefaultFallbackPenalty = 0.75

	defaultGenerationTimeout = 2 * time.Minute
)

// AnswerUseCase synthesizes an answer from retrieved chunks. Generation
// failures degrade to the fallback backend rather than surfacing as errors,
// so Synthesize always produces a usable result.
type AnswerUseCase struct {
	primary         ports.AnswerBackend
	fallback        ports.AnswerBackend
	fallbackPenalty float64
	timeout         time.Duration
}

// NewAnswerUseCase creates an AnswerUseCase. primary may be nil when
// generation is disabled; the fallback then answers every question, at
// penalized confidence. fallback must never fail; the extractive backend
// satisfies that. A penalty outside (0, 1) falls back to the default, as
// does a non-positive timeout.
func NewAnswerUseCase(primary, fallback ports.AnswerBackend, fallbackPenalty float64, timeout time.Duration) *AnswerUseCase {
	if fallbackPenalty <= 0 || fallbackPenalty >= 1 {
		fallbackPenalty = DefaultFallbackPenalty
	}
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}
	return &AnswerUseCase{
		primary:         primary,
		fallback:        fallback,
		fallbackPenalty: fallbackPenalty,
		timeout:         timeout,
	}
}

// Synthesize builds an answer from the retrieved chunks. With no chunks it
// reports insufficient information at zero confidence. Otherwise confidence
// is the mean similarity of the chunks used, discounted whenever the
// extractive fallback answers, whether generation failed or was never
// configured.
func (uc *AnswerUseCase) Synthesize(ctx context.Context, question string, retrieved []entities.SimilarityResult) *entities.QAResult {
	if len(retrieved) == 0 {
		return &entities.QAResult{
			Answer:     InsufficientInformationAnswer,
			Confidence: 0,
		}
	}

	contexts := make([]string, len(retrieved))
	sources := make([]entities.Chunk, len(retrieved))
	confidence := 0.0
	for i, r := range retrieved {
		contexts[i] = r.Chunk.Content
		sources[i] = r.Chunk
		confidence += r.Score
	}
	confidence /= float64(len(retrieved))
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	var answer string
	if uc.primary != nil {
		genCtx, cancel := context.WithTimeout(ctx, uc.timeout)
		var err error
		answer, err = uc.primary.Answer(genCtx, question, contexts)
		cancel()
		if err != nil {
			log.Printf("[WARN] %s backend failed, using %s fallback: %v", uc.primary.Name(), uc.fallback.Name(), err)
			answer = ""
		}
	}

	degraded := false
	if answer == "" {
		answer, _ = uc.fallback.Answer(ctx, question, contexts)
		confidence *= uc.fallbackPenalty
		degraded = true
	}
	if answer == "" {
		answer = InsufficientInformationAnswer
		confidence = 0
	}

	return &entities.QAResult{
		Answer:     answer,
		Sources:    sources,
		Confidence: confidence,
		Degraded:   degraded,
	}
}
