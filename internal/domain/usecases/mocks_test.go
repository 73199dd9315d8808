package usecases

import (
	"context"
	"errors"
	"hash/fnv"
	"math"
	"sort"
	"strings"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
)

// stubEmbedder returns deterministic unit vectors. Texts can be pinned to
// fixed vectors; everything else gets a hash-derived one.
type stubEmbedder struct {
	pinned map[string][]float32
	err    error
	calls  int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := s.pinned[t]; ok {
			out[i] = v
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(t))
		sum := h.Sum32()
		v := []float32{
			float32(sum & 0xff), float32(sum >> 8 & 0xff),
			float32(sum >> 16 & 0xff), float32(sum >> 24 & 0xff),
		}
		out[i] = normalize(v)
	}
	return out, nil
}

func (s *stubEmbedder) Dimension() int { return 4 }

func normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func vec(angle float64) []float32 {
	return []float32{float32(math.Cos(angle)), float32(math.Sin(angle)), 0, 0}
}

// fakeIndex is an in-memory vector index for usecase tests.
type fakeIndex struct {
	chunks      []entities.Chunk
	initialized bool
	searchErr   error
	rebuilt     bool
}

func (f *fakeIndex) Add(_ context.Context, chunks []entities.Chunk) error {
	f.chunks = append(f.chunks, chunks...)
	if len(chunks) > 0 {
		f.initialized = true
	}
	return nil
}

func (f *fakeIndex) Rebuild(_ context.Context, chunks []entities.Chunk) error {
	f.chunks = append([]entities.Chunk(nil), chunks...)
	f.initialized = true
	f.rebuilt = true
	return nil
}

func (f *fakeIndex) Search(_ context.Context, embedding []float32, topK int) ([]entities.SimilarityResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if !f.initialized {
		return nil, entities.ErrIndexNotInitialized
	}
	results := make([]entities.SimilarityResult, 0, len(f.chunks))
	for _, c := range f.chunks {
		var score float64
		for i := range embedding {
			if i < len(c.Embedding) {
				score += float64(embedding[i]) * float64(c.Embedding[i])
			}
		}
		results = append(results, entities.SimilarityResult{Chunk: c, Score: score})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > topK {
		results = results[:topK]
	}
	for i := range results {
		results[i].Rank = i
	}
	return results, nil
}

func (f *fakeIndex) Delete(_ context.Context, documentID string) error {
	kept := f.chunks[:0]
	for _, c := range f.chunks {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	f.chunks = kept
	return nil
}

func (f *fakeIndex) Count(context.Context) (int, error)    { return len(f.chunks), nil }
func (f *fakeIndex) IsEmpty(context.Context) (bool, error) { return len(f.chunks) == 0, nil }
func (f *fakeIndex) Close() error                          { return nil }

// stubBackend returns a canned answer or error.
type stubBackend struct {
	name   string
	answer string
	err    error
	calls  int
}

func (s *stubBackend) Name() string { return s.name }

func (s *stubBackend) Answer(_ context.Context, _ string, _ []string) (string, error) {
	s.calls++
	return s.answer, s.err
}

// stubChunker splits on whitespace into fixed-size windows without overlap.
type stubChunker struct {
	size int
	err  error
}

func (s *stubChunker) Clean(text string) string { return strings.TrimSpace(text) }

func (s *stubChunker) Chunk(docID, text string) ([]entities.Chunk, error) {
	if s.err != nil {
		return nil, s.err
	}
	tokens := strings.Fields(text)
	var chunks []entities.Chunk
	for start := 0; start < len(tokens); start += s.size {
		end := start + s.size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, entities.Chunk{
			DocumentID: docID,
			Content:    strings.Join(tokens[start:end], " "),
			Seq:        len(chunks),
			TokenCount: end - start,
		})
	}
	for i := range chunks {
		chunks[i].ID = docID + ":" + string(rune('0'+i))
	}
	return chunks, nil
}

// stubLoader serves documents from a path-to-content map.
type stubLoader struct {
	docs map[string]string
}

func (s *stubLoader) Load(_ context.Context, path string) (*entities.Document, error) {
	content, ok := s.docs[path]
	if !ok {
		return nil, errors.New("no such document")
	}
	return &entities.Document{ID: s.DocumentID(path), Name: path, Path: path, Content: content}, nil
}

func (s *stubLoader) DocumentID(path string) string { return "id-" + path }

func (s *stubLoader) SupportedExtensions() []string { return []string{".txt", ".md"} }
