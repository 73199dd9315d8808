// Package embedding provides the embedding backends and the once-loaded
// Service that the rest of the pipeline depends on.
package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
)

// DefaultDimension matches the dimensionality of small sentence-embedding
// models so that the local backend is a drop-in stand-in for a remote one.
const DefaultDimension = 384

// LocalModel is a deterministic, dependency-free embedding backend. It hashes
// stopword-filtered tokens into a fixed-dimension bag-of-words vector and
// L2-normalizes the result. Texts sharing content words land close under
// cosine similarity, which is what retrieval over a small corpus needs when
// no remote model is configured.
type LocalModel struct {
	dim          int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewLocalModel creates the local backend. A non-positive dimension selects
// DefaultDimension.
func NewLocalModel(dimension int) (*LocalModel, error) {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &LocalModel{
		dim:          dimension,
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}, nil
}

// Name returns the backend identifier.
func (m *LocalModel) Name() string { return "local" }

// Dimension returns the fixed vector dimensionality.
func (m *LocalModel) Dimension() int { return m.dim }

// Embed hashes each text into a normalized vector. One invocation handles the
// whole batch; order is preserved.
func (m *LocalModel) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrEmbeddingBackend, err)
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = m.embedOne(text)
	}
	return vectors, nil
}

func (m *LocalModel) embedOne(text string) []float32 {
	vec := make([]float32, m.dim)
	for _, tok := range m.tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%uint32(m.dim)]++
	}
	l2Normalize(vec)
	return vec
}

func (m *LocalModel) tokenize(text string) []string {
	raw := m.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := m.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// l2Normalize scales v to unit length. Zero vectors are left untouched.
func l2Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by",
		"with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those",
		"from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about",
		"between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same",
		"too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
