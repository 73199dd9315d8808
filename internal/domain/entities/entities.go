// Package entities contains the core business entities of the question
// answering pipeline. Pure domain objects with no external dependencies.
package entities

import "time"

// Document represents a source document after text extraction (.txt, .md, .pdf).
type Document struct {
	ID        string
	Name      string
	Path      string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Chunk is a bounded, overlapping window of a document's text. It is the unit
// of embedding and retrieval. Neighbor ids are informational only; a chunk is
// owned by exactly one document.
type Chunk struct {
	ID         string
	DocumentID string
	Content    string
	Seq        int // position within the document
	TokenCount int
	PrevID     string
	NextID     string
	Embedding  []float32 // L2-normalized vector (populated by the embedding adapter)
}

// SimilarityResult is a retrieved chunk with its cosine similarity score and
// rank. Transient, produced per query.
type SimilarityResult struct {
	Chunk Chunk
	Score float64
	Rank  int
}

// QAResult is the outcome of answer synthesis for one question.
// Degraded marks answers produced by the extractive fallback; callers must not
// infer backend involvement from the confidence value alone.
type QAResult struct {
	Answer     string
	Sources    []Chunk
	Confidence float64 // always in [0,1]
	Degraded   bool
}

// EvaluationReport scores a (question, QAResult) pair.
type EvaluationReport struct {
	Relevance float64 `json:"relevance"`
	Coverage  float64 `json:"coverage"`
	Quality   float64 `json:"quality"`
}

// DocumentFailure records a document that could not be ingested.
type DocumentFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// IngestReport summarizes a corpus ingestion run. Ingestion partially
// succeeds: failed documents are listed, the rest are indexed.
type IngestReport struct {
	DocumentsIndexed int               `json:"documents_indexed"`
	ChunksIndexed    int               `json:"chunks_indexed"`
	Failures         []DocumentFailure `json:"failures,omitempty"`
}
