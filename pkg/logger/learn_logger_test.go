package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"WARNING", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWithContext(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		want    []string
		notWant []string
	}{
		{
			name: "request and user",
			ctx:  ContextWithUserID(ContextWithRequestID(context.Background(), "req-1"), "user-9"),
			want: []string{`"request_id":"req-1"`, `"user_id":"user-9"`},
		},
		{
			name:    "empty request id skipped",
			ctx:     ContextWithRequestID(context.Background(), ""),
			notWant: []string{"request_id", "user_id"},
		},
		{
			name:    "bare context",
			ctx:     context.Background(),
			notWant: []string{"request_id", "user_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			New(Config{Output: &buf}).WithContext(tt.ctx).Info("hello %s", "world")

			out := buf.String()
			if !strings.Contains(out, `"message":"hello world"`) {
				t.Errorf("missing message: %s", out)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("missing %s: %s", w, out)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(out, nw) {
					t.Errorf("unexpected %s: %s", nw, out)
				}
			}
		})
	}
}

func TestChainedFields(t *testing.T) {
	var buf bytes.Buffer
	New(Config{Output: &buf, Level: LevelWarn, Service: "svc"}).
		WithFields(map[string]any{"path": "/x"}).
		WithError(errors.New("boom")).
		WithDuration(1500 * time.Microsecond).
		Warn("slow")

	out := buf.String()
	for _, want := range []string{`"service":"svc"`, `"path":"/x"`, `"error":"boom"`, `"duration_ms":1.5`, `"level":"warn"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s: %s", want, out)
		}
	}

	buf.Reset()
	New(Config{Output: &buf, Level: LevelWarn}).Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at warn level, got %s", buf.String())
	}
}
