package rag

import "errors"

var (
	// ErrRetrievalUnavailable means the embedding call or the vector index failed.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrGenerationFailed means the model call failed or returned nothing usable.
	ErrGenerationFailed = errors.New("generation failed")
)
