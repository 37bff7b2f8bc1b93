package config

import (
	"os"
	"testing"
	"time"

	"Acero/internal/calc/rebar"
)

var keys = []string{
	"TOKEN_KEY", "LISTEN_ADDR", "TLS_CERT", "TLS_KEY", "STATIC_DIR", "DATABASE_URL",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "SECURE_COOKIE", "SESSION_TTL",
	"SESSION_SWEEP_INTERVAL", "REBAR_UNKNOWN_DIAMETER", "REPORT_TITLE",
}

// clearEnv unsets every variable FromEnv reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOKEN_KEY", "k")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Server.Addr != ":443" || !cfg.Server.TLS() {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Auth.RateLimitRPS != 1 || cfg.Auth.RateBurst != 3 || !cfg.Auth.SecureCookie {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Session.TTL != 12*time.Hour || cfg.Session.SweepInterval != 10*time.Minute {
		t.Errorf("session = %+v", cfg.Session)
	}
	if cfg.Rebar.UnknownDiameter != rebar.PolicyZero {
		t.Errorf("policy = %q, want zero", cfg.Rebar.UnknownDiameter)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TOKEN_KEY", "k")
	t.Setenv("LISTEN_ADDR", ":8080")
	t.Setenv("TLS_CERT", "")
	t.Setenv("RATE_LIMIT_BURST", "10")
	t.Setenv("SECURE_COOKIE", "false")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("SESSION_SWEEP_INTERVAL", "not-a-duration")
	t.Setenv("REBAR_UNKNOWN_DIAMETER", "reject")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.TLS() {
		t.Errorf("server = %+v, want plain :8080", cfg.Server)
	}
	if cfg.Auth.RateBurst != 10 || cfg.Auth.SecureCookie {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Session.TTL != 90*time.Minute {
		t.Errorf("TTL = %v, want 90m", cfg.Session.TTL)
	}
	if cfg.Session.SweepInterval != 10*time.Minute {
		t.Errorf("SweepInterval = %v, want default on parse failure", cfg.Session.SweepInterval)
	}
	if cfg.Rebar.UnknownDiameter != rebar.PolicyReject {
		t.Errorf("policy = %q, want reject", cfg.Rebar.UnknownDiameter)
	}
}

func TestFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing token key", map[string]string{}},
		{"bad policy", map[string]string{"TOKEN_KEY": "k", "REBAR_UNKNOWN_DIAMETER": "strict"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Error("FromEnv: want error")
			}
		})
	}
}
