package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// unsetEnv, key'leri test süresince kaldırır; test bitince eski değerler geri gelir.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

var identityKeys = []string{"IDENTITY_JWKS_URL", "COGNITO_REGION", "COGNITO_USER_POOL_ID"}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, identityKeys...)
	unsetEnv(t, "JWKS_CACHE_TTL", "JWT_VERIFY_SIGNATURE", "REACTION_MAX_RETRIES", "SERVER_PORT")
	t.Setenv("COGNITO_REGION", "eu-central-1")
	t.Setenv("COGNITO_USER_POOL_ID", "eu-central-1_abc")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := "https://cognito-idp.eu-central-1.amazonaws.com/eu-central-1_abc/.well-known/jwks.json"
	if got := cfg.Identity.KeySetURL(); got != want {
		t.Errorf("KeySetURL = %q, want %q", got, want)
	}
	if cfg.Identity.CacheTTL != 0 || cfg.Identity.VerifySignature {
		t.Errorf("identity defaults = %+v", cfg.Identity)
	}
	if cfg.Identity.FetchTimeout != 3*time.Second {
		t.Errorf("FetchTimeout = %v", cfg.Identity.FetchTimeout)
	}
	if cfg.Reaction.MaxRetries != 5 {
		t.Errorf("MaxRetries = %d", cfg.Reaction.MaxRetries)
	}
	if cfg.Server.Port != 9090 || !strings.HasSuffix(cfg.Server.Addr(), ":9090") {
		t.Errorf("server = %+v", cfg.Server)
	}
}

func TestLoadEnvFile(t *testing.T) {
	unsetEnv(t, identityKeys...)
	unsetEnv(t, "REDIS_KEY_PREFIX", "BROADCAST_DELIVERY_TIMEOUT", "CORS_ALLOWED_ORIGINS")

	path := filepath.Join(t.TempDir(), ".env")
	content := strings.Join([]string{
		"IDENTITY_JWKS_URL=https://id.example.com/jwks.json",
		"REDIS_KEY_PREFIX=staging",
		"BROADCAST_DELIVERY_TIMEOUT=750ms",
		"CORS_ALLOWED_ORIGINS=http://a.test, http://b.test ,",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Identity.KeySetURL() != "https://id.example.com/jwks.json" {
		t.Errorf("KeySetURL = %q", cfg.Identity.KeySetURL())
	}
	if cfg.Redis.KeyPrefix != "staging" {
		t.Errorf("KeyPrefix = %q", cfg.Redis.KeyPrefix)
	}
	if cfg.Broadcast.DeliveryTimeout != 750*time.Millisecond {
		t.Errorf("DeliveryTimeout = %v", cfg.Broadcast.DeliveryTimeout)
	}
	if got := cfg.Server.AllowedOrigins; len(got) != 2 || got[1] != "http://b.test" {
		t.Errorf("AllowedOrigins = %q", got)
	}
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	unsetEnv(t, identityKeys...)
	t.Setenv("IDENTITY_JWKS_URL", "https://id.example.com/jwks.json")

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"no identity provider", map[string]string{}, "IDENTITY_JWKS_URL"},
		{"cognito region only", map[string]string{"COGNITO_REGION": "eu-west-1"}, "IDENTITY_JWKS_URL"},
		{"bad port", map[string]string{"IDENTITY_JWKS_URL": "https://x", "SERVER_PORT": "http"}, "SERVER_PORT"},
		{"bad duration", map[string]string{"IDENTITY_JWKS_URL": "https://x", "JWKS_CACHE_TTL": "soon"}, "JWKS_CACHE_TTL"},
		{"bad bool", map[string]string{"IDENTITY_JWKS_URL": "https://x", "JWT_VERIFY_SIGNATURE": "maybe"}, "JWT_VERIFY_SIGNATURE"},
		{"zero delivery timeout", map[string]string{"IDENTITY_JWKS_URL": "https://x", "BROADCAST_DELIVERY_TIMEOUT": "0s"}, "broadcast timeouts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetEnv(t, identityKeys...)
			unsetEnv(t, "SERVER_PORT", "JWKS_CACHE_TTL", "JWT_VERIFY_SIGNATURE", "BROADCAST_DELIVERY_TIMEOUT")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}
