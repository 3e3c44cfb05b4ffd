package types

import "errors"

// Failure taxonomy for the query pipeline. Callers match with errors.Is and
// wrap with fmt.Errorf("...: %w", err).
var (
	// ErrIndexNotFound means no vector index exists for a document id.
	// Retrieval treats it as an empty result, never as a crash.
	ErrIndexNotFound = errors.New("vector index not found")

	// ErrEmbeddingFailed means the embedding backend was unreachable or
	// returned an unusable response. Non-retryable within a request.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrGenerationFailed means the generation backend was unreachable or
	// timed out. Strategies convert it into a visible error answer.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrExtractionFailed means the uploaded file is unsupported or corrupt.
	// Fatal to ingestion and reported to the caller.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrDocumentNotFound means the document id was never ingested.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrConversationNotFound means the conversation folder does not exist.
	ErrConversationNotFound = errors.New("conversation not found")
)
