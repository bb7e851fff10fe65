package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiter(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _ := l.Allow(ctx, "1.2.3.4"); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	now = base.Add(10 * time.Second)
	ok, wait := l.Allow(ctx, "1.2.3.4")
	if ok {
		t.Fatal("third request should be limited")
	}
	if wait != 50*time.Second {
		t.Errorf("expected 50s wait, got %v", wait)
	}

	if ok, _ := l.Allow(ctx, "5.6.7.8"); !ok {
		t.Error("other keys have their own window")
	}

	now = base.Add(time.Minute)
	if ok, _ := l.Allow(ctx, "1.2.3.4"); !ok {
		t.Error("new window should allow again")
	}
}

func TestDisabledLimiters(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		l    Limiter
	}{
		{"memory zero limit", NewMemoryLimiter(0, time.Minute)},
		{"redis without client", NewSlidingWindowLimiter(nil, 1, time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				if ok, _ := tt.l.Allow(ctx, "k"); !ok {
					t.Fatalf("request %d should be allowed", i+1)
				}
			}
		})
	}
}

func TestNewPicksMemoryWithoutRedis(t *testing.T) {
	if _, ok := New(nil, 10, time.Minute).(*MemoryLimiter); !ok {
		t.Error("expected a MemoryLimiter when redis is nil")
	}
}
