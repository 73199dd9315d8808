package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
)

func TestNew_RejectsBadParameters(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -5, 0},
		{"negative overlap", 100, -1},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.size, tc.overlap)
			if !errors.Is(err, entities.ErrInvalidConfiguration) {
				t.Errorf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	c, _ := New(100, 10)
	chunks, err := c.Chunk("doc", "")
	if err != nil {
		t.Fatalf("chunk failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks, got %d", len(chunks))
	}
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	c, _ := New(100, 10)
	chunks, err := c.Chunk("doc", "A short sentence.")
	if err != nil {
		t.Fatalf("chunk failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "A short sentence." {
		t.Errorf("unexpected content: %q", chunks[0].Content)
	}
	if chunks[0].TokenCount != 3 {
		t.Errorf("expected 3 tokens, got %d", chunks[0].TokenCount)
	}
}

func TestChunk_TwoSentencesSplitAtBoundary(t *testing.T) {
	// "The sky is blue." (4 tokens) + "Water is wet." (3 tokens) with
	// chunk_size=5 cannot share a window, so each sentence is its own chunk.
	c, _ := New(5, 0)
	chunks, err := c.Chunk("doc", "The sky is blue. Water is wet.")
	if err != nil {
		t.Fatalf("chunk failed: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != "The sky is blue." {
		t.Errorf("unexpected first chunk: %q", chunks[0].Content)
	}
	if chunks[1].Content != "Water is wet." {
		t.Errorf("unexpected second chunk: %q", chunks[1].Content)
	}
}

func TestChunk_TokenCountNeverExceedsChunkSize(t *testing.T) {
	text := strings.Repeat("Some words make a sentence here. ", 50)
	for _, size := range []int{5, 8, 20, 100} {
		c, _ := New(size, size/4)
		chunks, err := c.Chunk("doc", Clean(text))
		if err != nil {
			t.Fatalf("chunk failed: %v", err)
		}
		for _, ch := range chunks {
			if ch.TokenCount > size {
				t.Errorf("size %d: chunk %d has %d tokens", size, ch.Seq, ch.TokenCount)
			}
			if got := len(strings.Fields(ch.Content)); got != ch.TokenCount {
				t.Errorf("token count mismatch: recorded %d, actual %d", ch.TokenCount, got)
			}
		}
	}
}

func TestChunk_OverlapTokensMatch(t *testing.T) {
	text := Clean(strings.Repeat("Alpha beta gamma delta epsilon. Zeta eta theta. ", 20))
	overlap := 4
	c, _ := New(12, overlap)
	chunks, err := c.Chunk("doc", text)
	if err != nil {
		t.Fatalf("chunk failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1].Content)
		cur := strings.Fields(chunks[i].Content)
		tail := prev[len(prev)-overlap:]
		head := cur[:overlap]
		for j := range tail {
			if tail[j] != head[j] {
				t.Fatalf("chunk %d: overlap mismatch: tail %v head %v", i, tail, head)
			}
		}
	}
}

func TestChunk_ReconstructsCleanedText(t *testing.T) {
	raw := "The  quick brown fox jumps over the lazy dog. Pack my box\nwith five dozen liquor jugs! " +
		strings.Repeat("Grumpy wizards make toxic brew for the evil queen and jack. ", 10)
	cleaned := Clean(raw)
	overlap := 3
	c, _ := New(10, overlap)
	chunks, err := c.Chunk("doc", cleaned)
	if err != nil {
		t.Fatalf("chunk failed: %v", err)
	}

	var rebuilt []string
	for i, ch := range chunks {
		tokens := strings.Fields(ch.Content)
		if i > 0 {
			tokens = tokens[overlap:]
		}
		rebuilt = append(rebuilt, tokens...)
	}
	if got := strings.Join(rebuilt, " "); got != cleaned {
		t.Errorf("reconstruction mismatch:\n got  %q\n want %q", got, cleaned)
	}
}

func TestChunk_HardSplitsOversizedSentence(t *testing.T) {
	// One 30-token sentence with chunk_size 10 must be split at token
	// boundaries rather than dropped or emitted oversized.
	words := make([]string, 30)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ") + "."
	c, _ := New(10, 0)
	chunks, err := c.Chunk("doc", text)
	if err != nil {
		t.Fatalf("chunk failed: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	for _, ch := range chunks {
		if ch.TokenCount > 10 {
			t.Errorf("chunk %d exceeds size: %d tokens", ch.Seq, ch.TokenCount)
		}
	}
}

func TestChunk_NeighborIDs(t *testing.T) {
	c, _ := New(5, 0)
	chunks, err := c.Chunk("doc", "The sky is blue. Water is wet. Fire is hot.")
	if err != nil {
		t.Fatalf("chunk failed: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0].PrevID != "" || chunks[0].NextID != chunks[1].ID {
		t.Errorf("bad neighbor ids on first chunk: %+v", chunks[0])
	}
	if chunks[1].PrevID != chunks[0].ID || chunks[1].NextID != chunks[2].ID {
		t.Errorf("bad neighbor ids on middle chunk: %+v", chunks[1])
	}
	if chunks[2].PrevID != chunks[1].ID || chunks[2].NextID != "" {
		t.Errorf("bad neighbor ids on last chunk: %+v", chunks[2])
	}
}

func TestChunk_MalformedInput(t *testing.T) {
	c, _ := New(100, 10)
	_, err := c.Chunk("doc", "binary\x00garbage")
	if !errors.Is(err, entities.ErrMalformedDocument) {
		t.Errorf("expected ErrMalformedDocument, got %v", err)
	}
	_, err = c.Chunk("doc", string([]byte{0xff, 0xfe, 0xfd}))
	if !errors.Is(err, entities.ErrMalformedDocument) {
		t.Errorf("expected ErrMalformedDocument for invalid UTF-8, got %v", err)
	}
}

func TestClean(t *testing.T) {
	in := "  Hello,\tworld!\n\nThis  has   extra \x07 spaces. "
	want := "Hello, world! This has extra spaces."
	if got := Clean(in); got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}
