package httpmiddleware

import (
	"context"
	"testing"
	"time"
)

func TestLimiterExhaustsWindow(t *testing.T) {
	l := NewLimiter(nil, 3)
	for i := 0; i < 3; i++ {
		if !l.Allow(context.Background(), "1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow(context.Background(), "1.2.3.4") {
		t.Fatal("expected limit after window budget consumed")
	}
}

func TestLimiterPerKey(t *testing.T) {
	l := NewLimiter(nil, 1)
	if !l.Allow(context.Background(), "a") {
		t.Fatal("first key should be allowed")
	}
	if !l.Allow(context.Background(), "b") {
		t.Fatal("second key should have its own window")
	}
	if l.Allow(context.Background(), "a") {
		t.Fatal("first key should be exhausted")
	}
}

func TestLimiterWindowResets(t *testing.T) {
	l := NewLimiter(nil, 1)
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return start }

	if !l.Allow(context.Background(), "a") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow(context.Background(), "a") {
		t.Fatal("window budget should be consumed")
	}

	l.now = func() time.Time { return start.Add(windowLength + time.Second) }
	if !l.Allow(context.Background(), "a") {
		t.Fatal("expected fresh window after reset")
	}
}
