package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE", "memory")
	t.Setenv("DB_DSN", "")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("REDIS_DB", "")
	t.Setenv("SEED_DEMO", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.ServerPort)
	}
	if cfg.JWTSecret != "s3cret" {
		t.Errorf("JWT secret should fall back to the session secret, got %q", cfg.JWTSecret)
	}
	if cfg.TokenTTL != 24*time.Hour || cfg.CacheTTL != time.Minute {
		t.Errorf("unexpected ttls token=%v cache=%v", cfg.TokenTTL, cfg.CacheTTL)
	}
	if cfg.SeedDemo {
		t.Error("demo seeding should be off by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE", "postgres")
	t.Setenv("DB_DSN", "postgres://localhost/prod")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("SEED_DEMO", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWTSecret != "jwt" || cfg.TokenTTL != 2*time.Hour || cfg.RedisDB != 3 || !cfg.SeedDemo {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing dsn", map[string]string{"STORAGE": "postgres", "DB_DSN": "", "SESSION_SECRET": "x"}},
		{"missing session secret", map[string]string{"STORAGE": "memory", "SESSION_SECRET": ""}},
		{"unknown storage", map[string]string{"STORAGE": "sqlite", "SESSION_SECRET": "x"}},
		{"bad ttl", map[string]string{"STORAGE": "memory", "SESSION_SECRET": "x", "TOKEN_TTL": "forever"}},
		{"bad redis db", map[string]string{"STORAGE": "memory", "SESSION_SECRET": "x", "REDIS_DB": "one"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{"TOKEN_TTL", "CACHE_TTL", "REDIS_DB", "SEED_DEMO"} {
				t.Setenv(k, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
