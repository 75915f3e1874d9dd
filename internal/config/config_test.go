package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.GinMode != "debug" {
		t.Fatalf("GinMode = %q, want debug", cfg.GinMode)
	}
	if cfg.LoginMaxAttempts != 5 {
		t.Fatalf("LoginMaxAttempts = %d, want 5", cfg.LoginMaxAttempts)
	}
	if cfg.LoginAttemptReset != 15*time.Minute {
		t.Fatalf("LoginAttemptReset = %v, want 15m", cfg.LoginAttemptReset)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")
	t.Setenv("LOGIN_ATTEMPT_RESET_MINUTES", "30")
	t.Setenv("REDIS_URL", "redis://127.0.0.1:6379/1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Fatalf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.LoginMaxAttempts != 3 {
		t.Fatalf("LoginMaxAttempts = %d, want 3", cfg.LoginMaxAttempts)
	}
	if cfg.LoginAttemptReset != 30*time.Minute {
		t.Fatalf("LoginAttemptReset = %v, want 30m", cfg.LoginAttemptReset)
	}
	if cfg.RedisURL != "redis://127.0.0.1:6379/1" {
		t.Fatalf("RedisURL = %q", cfg.RedisURL)
	}
}

func TestValidateReleaseMode(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing SESSION_SECRET in release mode")
	}

	t.Setenv("SESSION_SECRET", "strong-secret")
	t.Setenv("DATABASE_DSN", "postgres://app@db:5432/notekeeper")
	if _, err := Load(); err != nil {
		t.Fatalf("Load error with full release config: %v", err)
	}
}

func TestValidateAttemptLimit(t *testing.T) {
	t.Setenv("LOGIN_MAX_ATTEMPTS", "0")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-positive LOGIN_MAX_ATTEMPTS")
	}
}
