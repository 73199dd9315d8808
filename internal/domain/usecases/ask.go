package usecases

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
)

// AskResult is a synthesized answer with an optional evaluation.
type AskResult struct {
	entities.QAResult
	Evaluation *entities.EvaluationReport
}

// AskUseCase runs the full question-answering flow: retrieve, synthesize,
// and optionally evaluate.
type AskUseCase struct {
	retriever *RetrieveUseCase
	answerer  *AnswerUseCase
	evaluator *EvaluateUseCase
}

// NewAskUseCase creates an AskUseCase. evaluator may be nil when evaluation
// is disabled.
func NewAskUseCase(retriever *RetrieveUseCase, answerer *AnswerUseCase, evaluator *EvaluateUseCase) *AskUseCase {
	return &AskUseCase{
		retriever: retriever,
		answerer:  answerer,
		evaluator: evaluator,
	}
}

// Ask answers a question from the indexed corpus. topK below 1 uses the
// configured value. Evaluation failures are logged, not propagated; the
// answer is still returned.
func (uc *AskUseCase) Ask(ctx context.Context, question string, topK int, evaluate bool) (*AskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is empty", entities.ErrInvalidConfiguration)
	}

	retrieved, err := uc.retriever.RetrieveTopK(ctx, question, topK)
	if err != nil {
		return nil, err
	}

	result := &AskResult{QAResult: *uc.answerer.Synthesize(ctx, question, retrieved)}

	if evaluate && uc.evaluator != nil {
		report, err := uc.evaluator.Evaluate(ctx, question, &result.QAResult)
		if err != nil {
			log.Printf("[WARN] evaluation failed: %v", err)
		} else {
			result.Evaluation = report
		}
	}
	return result, nil
}
