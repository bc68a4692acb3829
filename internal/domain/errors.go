package domain

import (
	"errors"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrCollectionNotFound signals a collection with no ingested documents.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrInvalidConfig signals a configuration that cannot produce correct results.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInvalidRequest signals a malformed request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingTimeout signals that the embedding provider did not answer in time.
	ErrEmbeddingTimeout = errors.New("embedding timeout")
)
