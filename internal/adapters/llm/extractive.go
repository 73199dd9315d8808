package llm

import (
	"context"
	"strings"
	"unicode"
)

const defaultMaxSentences = 3

// ExtractiveBackend composes answers directly from the retrieved passages,
// without a generative model. It picks sentences that share keywords with the
// question, falling back to the leading sentences of the best passage. It
// never fails, which makes it the degraded-mode backend.
type ExtractiveBackend struct {
	maxSentences int
}

// NewExtractiveBackend creates an extractive answer backend.
func NewExtractiveBackend() *ExtractiveBackend {
	return &ExtractiveBackend{maxSentences: defaultMaxSentences}
}

// Name identifies the backend in logs and health output.
func (b *ExtractiveBackend) Name() string { return "extractive" }

// Answer selects up to maxSentences sentences from the contexts that contain
// question keywords, in passage order.
func (b *ExtractiveBackend) Answer(_ context.Context, question string, contexts []string) (string, error) {
	if len(contexts) == 0 {
		return "", nil
	}

	keywords := extractKeywords(question)
	var matched []string
	for _, c := range contexts {
		for _, sentence := range splitSentences(c) {
			if len(matched) >= b.maxSentences {
				break
			}
			if containsAnyKeyword(sentence, keywords) {
				matched = append(matched, sentence)
			}
		}
	}

	if len(matched) == 0 {
		leading := splitSentences(contexts[0])
		if len(leading) > b.maxSentences {
			leading = leading[:b.maxSentences]
		}
		matched = leading
	}

	return strings.Join(matched, " "), nil
}

// extractKeywords lowercases the question and keeps words longer than three
// characters, stripped of punctuation.
func extractKeywords(question string) []string {
	var keywords []string
	for _, w := range strings.Fields(strings.ToLower(question)) {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if len(w) > 3 {
			keywords = append(keywords, w)
		}
	}
	return keywords
}

func containsAnyKeyword(sentence string, keywords []string) bool {
	lower := strings.ToLower(sentence)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// splitSentences breaks text on terminal punctuation, keeping the punctuation
// with its sentence.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
