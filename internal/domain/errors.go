package domain

import "errors"

var (
	// ErrEmbeddingUnavailable indicates the embedding service failed or timed out.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmptyQuery indicates a query with no searchable text.
	ErrEmptyQuery = errors.New("empty query")

	// ErrPackUnavailable indicates no knowledge pack was loaded.
	ErrPackUnavailable = errors.New("knowledge pack unavailable")
)
