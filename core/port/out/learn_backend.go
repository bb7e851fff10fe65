// Package out defines outbound ports (driven ports) for the application.
package out

import (
	"context"

	"learning_server/core/domain"

	"github.com/google/uuid"
)

// =============================================================================
// Model backends (OpenAI-compatible API or local Ollama)
// =============================================================================

// EmbeddingBackend turns text into a vector.
type EmbeddingBackend interface {
	Embedding(ctx context.Context, text string) ([]float32, error)
}

// GenerationBackend runs a single system+user completion and returns the raw text.
type GenerationBackend interface {
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// =============================================================================
// Document extraction
// =============================================================================

// TextExtractor pulls plain text out of an uploaded document.
// Failures are reported as *domain.ExtractionError.
type TextExtractor interface {
	Extract(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

// =============================================================================
// Assessment storage
// =============================================================================

// AssessmentRepository persists learning-style results.
type AssessmentRepository interface {
	Save(ctx context.Context, record *domain.AssessmentRecord) error
	Latest(ctx context.Context, userID uuid.UUID) (*domain.AssessmentRecord, error)
}
