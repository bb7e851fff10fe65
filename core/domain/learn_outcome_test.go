package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestOutcomeTransitions(t *testing.T) {
	t.Run("primary path", func(t *testing.T) {
		o := NewOutcome()
		if o.Stage != StageChunking || o.Retrieval != RetrievalNone {
			t.Fatalf("unexpected initial outcome %+v", o)
		}
		for _, stage := range []Stage{StageRetrieving, StageAssembling, StageGenerating, StageValidating} {
			o.Advance(stage)
		}
		o.Finish()
		if o.Stage != StageDone || o.Fallback || o.FailedStage != "" {
			t.Errorf("unexpected outcome %+v", o)
		}
	})

	t.Run("fallback keeps failed stage", func(t *testing.T) {
		o := NewOutcome()
		o.Advance(StageValidating)
		o.FallBack(&ValidationError{Schema: "RecommendationList", Err: errors.New("bad")})
		if o.Stage != StageFallingBack {
			t.Errorf("expected falling back, got %s", o.Stage)
		}
		o.Finish()
		if o.Stage != StageDone || !o.Fallback || o.FailedStage != StageValidating || o.FallbackReason != "validation" {
			t.Errorf("unexpected outcome %+v", o)
		}
	})
}

func TestFallbackReason(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"generation", fmt.Errorf("call: %w", &GenerationError{Err: errors.New("503")}), "generation"},
		{"validation", &ValidationError{Schema: "SummaryDocument", Err: errors.New("bad")}, "validation"},
		{"embedding", &EmbeddingError{Err: errors.New("timeout")}, "embedding"},
		{"all embeddings", ErrAllEmbeddingsFailed, "embedding"},
		{"other", errors.New("boom"), "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FallbackReason(tt.err); got != tt.want {
				t.Errorf("FallbackReason() = %q, want %q", got, tt.want)
			}
		})
	}
}
