package config

import (
	"testing"
)

func TestGetEnvDefault(t *testing.T) {
	if got := getEnv("DOES_NOT_EXIST_XYZ", "fallback"); got != "fallback" {
		t.Fatalf("getEnv = %q, want fallback", got)
	}

	t.Setenv("SOME_KEY", "value")
	if got := getEnv("SOME_KEY", "fallback"); got != "value" {
		t.Fatalf("getEnv = %q, want value", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	if got := getEnvInt("DOES_NOT_EXIST_XYZ", 7); got != 7 {
		t.Fatalf("getEnvInt = %d, want 7", got)
	}

	t.Setenv("QUOTA", "250")
	if got := getEnvInt("QUOTA", 7); got != 250 {
		t.Fatalf("getEnvInt = %d, want 250", got)
	}

	t.Setenv("QUOTA", "garbage")
	if got := getEnvInt("QUOTA", 7); got != 7 {
		t.Fatalf("getEnvInt over garbage = %d, want 7", got)
	}

	t.Setenv("QUOTA", "-3")
	if got := getEnvInt("QUOTA", 7); got != 7 {
		t.Fatalf("getEnvInt over negative = %d, want 7", got)
	}
}

func TestLoadTwitterTokens(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("TWITTER_BEARER_TOKEN_1", "tok1")
	t.Setenv("TWITTER_BEARER_TOKEN_2", "")
	t.Setenv("TWITTER_BEARER_TOKEN_3", "tok3")
	t.Setenv("TWITTER_KEY_QUOTA", "50")

	cfg := Load()
	if len(cfg.TwitterBearerTokens) != 2 {
		t.Fatalf("tokens = %v, want 2 entries", cfg.TwitterBearerTokens)
	}
	if cfg.TwitterBearerTokens[0] != "tok1" || cfg.TwitterBearerTokens[1] != "tok3" {
		t.Fatalf("tokens = %v", cfg.TwitterBearerTokens)
	}
	if cfg.TwitterKeyQuota != 50 {
		t.Fatalf("quota = %d, want 50", cfg.TwitterKeyQuota)
	}
	if cfg.AppPort != "4000" {
		t.Fatalf("port = %q, want default 4000", cfg.AppPort)
	}
}
