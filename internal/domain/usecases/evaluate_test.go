package usecases

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
)

func TestNewEvaluateUseCaseValidation(t *testing.T) {
	embedder := &stubEmbedder{}
	if _, err := NewEvaluateUseCase(embedder, -1, 0.3); !errors.Is(err, entities.ErrInvalidConfiguration) {
		t.Errorf("negative weight: got %v", err)
	}
	if _, err := NewEvaluateUseCase(embedder, 0, 0); !errors.Is(err, entities.ErrInvalidConfiguration) {
		t.Errorf("zero weights: got %v", err)
	}
	if _, err := NewEvaluateUseCase(embedder, 0.7, 0.3); err != nil {
		t.Errorf("valid weights: got %v", err)
	}
}

func TestEvaluateWeightsNormalized(t *testing.T) {
	uc, err := NewEvaluateUseCase(&stubEmbedder{}, 7, 3)
	if err != nil {
		t.Fatalf("NewEvaluateUseCase: %v", err)
	}
	if math.Abs(uc.relevanceWeight-0.7) > 1e-9 || math.Abs(uc.coverageWeight-0.3) > 1e-9 {
		t.Errorf("weights = %f, %f", uc.relevanceWeight, uc.coverageWeight)
	}
}

func TestEvaluateIdenticalQuestionAndAnswer(t *testing.T) {
	question := "what is the capital of france"
	embedder := &stubEmbedder{pinned: map[string][]float32{question: vec(0.2)}}
	uc, _ := NewEvaluateUseCase(embedder, 0.7, 0.3)

	result := &entities.QAResult{
		Answer: question,
		Sources: []entities.Chunk{
			{Content: "The capital of France is Paris, what a city."},
		},
	}
	report, err := uc.Evaluate(context.Background(), question, result)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if math.Abs(report.Relevance-1) > 1e-6 {
		t.Errorf("relevance = %f, want 1", report.Relevance)
	}
	if math.Abs(report.Coverage-1) > 1e-9 {
		t.Errorf("coverage = %f, want 1 (keywords: what, capital, france)", report.Coverage)
	}
	if math.Abs(report.Quality-1) > 1e-6 {
		t.Errorf("quality = %f, want 1", report.Quality)
	}
}

func TestEvaluatePartialCoverage(t *testing.T) {
	question := "capital cities of europe"
	embedder := &stubEmbedder{}
	uc, _ := NewEvaluateUseCase(embedder, 0.7, 0.3)

	result := &entities.QAResult{
		Answer: "some answer",
		Sources: []entities.Chunk{
			{Content: "every capital has museums"},
		},
	}
	report, err := uc.Evaluate(context.Background(), question, result)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	// Keywords: capital, cities, europe. Only capital appears.
	if math.Abs(report.Coverage-1.0/3.0) > 1e-9 {
		t.Errorf("coverage = %f, want 1/3", report.Coverage)
	}
}

func TestEvaluateInsufficientAnswerScoresZero(t *testing.T) {
	embedder := &stubEmbedder{}
	uc, _ := NewEvaluateUseCase(embedder, 0.7, 0.3)

	report, err := uc.Evaluate(context.Background(), "question", &entities.QAResult{Answer: InsufficientInformationAnswer})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if report.Relevance != 0 || report.Coverage != 0 || report.Quality != 0 {
		t.Errorf("expected zero report, got %+v", report)
	}
	if embedder.calls != 0 {
		t.Error("no embedding call expected for insufficient answer")
	}
}

func TestEvaluatePropagatesEmbedError(t *testing.T) {
	embedErr := errors.New("backend down")
	uc, _ := NewEvaluateUseCase(&stubEmbedder{err: embedErr}, 0.7, 0.3)

	_, err := uc.Evaluate(context.Background(), "question", &entities.QAResult{Answer: "answer"})
	if !errors.Is(err, embedErr) {
		t.Fatalf("expected embed error, got %v", err)
	}
}

func TestQuestionKeywords(t *testing.T) {
	got := questionKeywords("What, what is the BEST cafe?")
	want := []string{"what", "best", "cafe"}
	if len(got) != len(want) {
		t.Fatalf("keywords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword %d = %q, want %q", i, got[i], want[i])
		}
	}
}
