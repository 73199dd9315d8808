// Package chunker splits document text into overlapping, sentence-respecting
// token windows. Pure functions of the input text and parameters; no side
// effects.
package chunker

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
)

// Chunker produces token windows of at most chunkSize tokens, with consecutive
// windows from the same document sharing an overlap-token suffix/prefix.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New validates the window parameters. Overlap must be non-negative and
// strictly smaller than the chunk size.
func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk_size must be positive, got %d", entities.ErrInvalidConfiguration, chunkSize)
	}
	if overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk_overlap must satisfy 0 <= overlap < chunk_size, got %d", entities.ErrInvalidConfiguration, overlap)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

var (
	nonTextRe    = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?;:()'"-]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Clean normalizes raw extracted text: control characters and non-text symbols
// are dropped, whitespace runs collapse to single spaces. Callers clean text
// before chunking; Chunk assumes its input is already cleaned.
func Clean(text string) string {
	text = nonTextRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// Chunk splits cleaned text into chunks for the given document. Sentences are
// accumulated greedily until the next one would exceed the chunk size; a
// single sentence longer than the chunk size is hard-split at the token
// boundary. Each following window restarts exactly overlap tokens before the
// end of the previous one. Empty input yields no chunks; input that is not
// valid text yields ErrMalformedDocument.
func (c *Chunker) Chunk(docID, text string) ([]entities.Chunk, error) {
	if !utf8.ValidString(text) || strings.ContainsRune(text, '\x00') {
		return nil, fmt.Errorf("%w: document %s", entities.ErrMalformedDocument, docID)
	}

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil, nil
	}

	ends := sentenceEnds(tokens)

	type span struct{ start, end int }
	var spans []span
	start := 0
	for start < len(tokens) {
		// Extend the window to the last sentence end that fits.
		end := start
		i := sort.SearchInts(ends, start+1)
		for ; i < len(ends); i++ {
			if ends[i]-start > c.chunkSize {
				break
			}
			end = ends[i]
		}
		// A window that does not reach past the overlap region adds nothing
		// new: either the next sentence alone exceeds the chunk size, or the
		// restart landed mid-sentence. Hard-split at the token boundary.
		if end-start <= c.overlap {
			end = start + c.chunkSize
			if end > len(tokens) {
				end = len(tokens)
			}
		}
		spans = append(spans, span{start, end})
		if end >= len(tokens) {
			break
		}
		start = end - c.overlap
	}

	chunks := make([]entities.Chunk, len(spans))
	for i, s := range spans {
		chunks[i] = entities.Chunk{
			ID:         docID + ":" + strconv.Itoa(i),
			DocumentID: docID,
			Content:    strings.Join(tokens[s.start:s.end], " "),
			Seq:        i,
			TokenCount: s.end - s.start,
		}
	}
	for i := range chunks {
		if i > 0 {
			chunks[i].PrevID = chunks[i-1].ID
		}
		if i < len(chunks)-1 {
			chunks[i].NextID = chunks[i+1].ID
		}
	}
	return chunks, nil
}

// Clean normalizes raw text for chunking. See the package-level Clean.
func (c *Chunker) Clean(text string) string { return Clean(text) }

// ChunkSize returns the configured window size in tokens.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap in tokens.
func (c *Chunker) Overlap() int { return c.overlap }

// sentenceEnds returns the token indexes (exclusive) at which sentences end.
// The end of the text always counts as a sentence boundary.
func sentenceEnds(tokens []string) []int {
	var ends []int
	for i, tok := range tokens {
		if endsSentence(tok) {
			ends = append(ends, i+1)
		}
	}
	if len(ends) == 0 || ends[len(ends)-1] != len(tokens) {
		ends = append(ends, len(tokens))
	}
	return ends
}

func endsSentence(tok string) bool {
	tok = strings.TrimRight(tok, `"')]`)
	if tok == "" {
		return false
	}
	switch tok[len(tok)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
