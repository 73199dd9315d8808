package entities

import "errors"

// Error taxonomy of the pipeline. Adapters and usecases wrap these sentinels
// so callers can classify failures with errors.Is.
var (
	// ErrMalformedDocument marks input that is not usable text (binary data
	// leaking through extraction). Ingestion skips the document and continues.
	ErrMalformedDocument = errors.New("document content is not valid text")

	// ErrEmbeddingBackend marks an embedding backend that could not be
	// initialized or invoked. Not locally recoverable; an unembeddable query
	// cannot be answered.
	ErrEmbeddingBackend = errors.New("embedding backend unavailable")

	// ErrIndexNotInitialized is returned by Search before any entry has been
	// added or loaded. Surfaced to callers as "no documents processed yet".
	ErrIndexNotInitialized = errors.New("vector index not initialized: no documents processed yet")

	// ErrGenerationBackend marks a failed generation call (timeout, auth,
	// quota). Always recovered by the extractive fallback; never escapes
	// answer synthesis.
	ErrGenerationBackend = errors.New("generation backend failure")

	// ErrInvalidConfiguration marks rejected configuration values.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
