package domain

import "errors"

var (
	// ErrNotFound signals a missing offer or merchant.
	ErrNotFound = errors.New("not found")
	// ErrBackendUnavailable signals that the index store cannot be reached.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrMalformedInput signals invalid caller-supplied parameters.
	ErrMalformedInput = errors.New("malformed input")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)

// KeyPrefix namespaces every key the registry writes to the index store.
const KeyPrefix = "gor:"
