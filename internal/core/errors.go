package core

import "errors"

var (
	// ErrParse is returned when the detected format yields no usable content.
	ErrParse = errors.New("document could not be parsed")

	// ErrEmbedding is returned when the embedding provider call fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStorage is returned when a vector-store or key-store call fails.
	ErrStorage = errors.New("storage operation failed")

	// ErrNotFound is returned when a collection or document is absent where
	// presence is required.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when API key validation fails.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation is returned when a request is missing required fields.
	ErrValidation = errors.New("invalid request")
)
