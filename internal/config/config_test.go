package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.SessionTTL != 5*time.Minute {
		t.Fatalf("expected 5m session TTL, got %s", cfg.SessionTTL)
	}
	if cfg.RateLimitPerMin != 120 {
		t.Fatalf("expected default rate limit 120, got %d", cfg.RateLimitPerMin)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SESSION_TTL", "2m")
	t.Setenv("RATE_LIMIT_PER_MIN", "30")
	t.Setenv("TOKEN_ISSUER", "classroom")

	cfg := Load()
	if cfg.SessionTTL != 2*time.Minute {
		t.Fatalf("expected 2m, got %s", cfg.SessionTTL)
	}
	if cfg.RateLimitPerMin != 30 {
		t.Fatalf("expected 30, got %d", cfg.RateLimitPerMin)
	}
	if cfg.TokenIssuer != "classroom" {
		t.Fatalf("expected classroom, got %s", cfg.TokenIssuer)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "soon")
	t.Setenv("RATE_LIMIT_PER_MIN", "many")

	cfg := Load()
	if cfg.SessionTTL != 5*time.Minute {
		t.Fatalf("expected fallback 5m, got %s", cfg.SessionTTL)
	}
	if cfg.RateLimitPerMin != 120 {
		t.Fatalf("expected fallback 120, got %d", cfg.RateLimitPerMin)
	}
}
