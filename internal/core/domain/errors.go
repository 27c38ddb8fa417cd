package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidArgument indicates an argument outside its valid range,
	// such as a non-positive result count.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDimensionMismatch indicates a vector whose length differs from the index dimension.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrIndexIntegrity indicates the persisted vector file and chunk map disagree.
	// The pair is reinitialised empty when this is detected on open.
	ErrIndexIntegrity = errors.New("index integrity violation")

	// ErrClosed indicates an operation on a closed resource.
	ErrClosed = errors.New("closed")

	// ErrUnsupportedFormat indicates no extractor handles a MIME type.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Provider Errors.

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrProviderRejected indicates the provider refused the request outright
	// (bad request, bad credentials). Retrying will not help.
	ErrProviderRejected = errors.New("provider rejected request")
)
