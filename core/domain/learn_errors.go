package domain

import (
	"errors"
	"fmt"
)

// ErrAllEmbeddingsFailed is reported when no chunk could be embedded.
var ErrAllEmbeddingsFailed = errors.New("all chunk embeddings failed")

// EmbeddingError reports a failed call to the embedding backend.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// GenerationError reports a failed call to the text-generation backend.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ValidationError reports generated output that does not match its schema.
type ValidationError struct {
	Schema string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s: %s: %v", e.Schema, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid %s: %s", e.Schema, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ExtractionError reports that no text could be pulled out of an uploaded document.
type ExtractionError struct {
	ContentType string
	Err         error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("text extraction failed (%s): %v", e.ContentType, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// FallbackReason classifies the error that routed a pipeline run to the fallback.
func FallbackReason(err error) string {
	var (
		genErr *GenerationError
		valErr *ValidationError
		embErr *EmbeddingError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &genErr):
		return "generation"
	case errors.As(err, &valErr):
		return "validation"
	case errors.As(err, &embErr), errors.Is(err, ErrAllEmbeddingsFailed):
		return "embedding"
	default:
		return "unknown"
	}
}

// ErrNotFound is returned by repositories when no record matches.
var ErrNotFound = errors.New("not found")

// ErrStorage wraps every other repository failure.
var ErrStorage = errors.New("storage error")
