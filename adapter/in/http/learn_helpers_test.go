package http

import (
	"errors"
	"testing"

	"learning_server/core/domain"
	"learning_server/pkg/apperr"
)

func TestDecodeJSONField(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"cognitiveScore":10,"emotionalScore":20,"physicalScore":30}`, false},
		{"truncated", `{"cognitiveScore":`, true},
		{"wrong type", `{"cognitiveScore":"high"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var scores domain.AssessmentScores
			err := decodeJSONField(tt.raw, &scores, "assessmentResults")
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if scores.EmotionalScore != 20 {
					t.Errorf("unexpected scores %+v", scores)
				}
				return
			}

			var appErr *apperr.AppError
			if !errors.As(err, &appErr) {
				t.Fatalf("expected AppError, got %v", err)
			}
			if appErr.Code != apperr.CodeInvalidInput || appErr.Details["field"] != "assessmentResults" {
				t.Errorf("unexpected error %+v", appErr)
			}
			if appErr.Err == nil {
				t.Error("expected the decode error to be kept as the cause")
			}
		})
	}
}
