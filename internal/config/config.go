package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"Acero/internal/calc/rebar"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Session SessionConfig
	Rebar   RebarConfig
	Report  ReportConfig
}

type ServerConfig struct {
	Addr    string
	TLSCert string
	TLSKey  string
	// StaticDir is served at / when it exists.
	StaticDir string
}

type AuthConfig struct {
	TokenKey     []byte
	DatabaseURL  string
	RateLimitRPS float64
	RateBurst    int
	SecureCookie bool
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type RebarConfig struct {
	UnknownDiameter rebar.DiameterPolicy
}

type ReportConfig struct {
	Title string
}

// Load reads .env when present, then the environment, filling defaults.
func Load() (*Config, error) {
	err := godotenv.Load()
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Println("config: no .env file, using environment")
	case err != nil:
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	policy, err := rebar.ParsePolicy(getEnv("REBAR_UNKNOWN_DIAMETER", string(rebar.PolicyZero)))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := &Config{
		Server: ServerConfig{
			Addr:      getEnv("LISTEN_ADDR", ":443"),
			TLSCert:   getEnv("TLS_CERT", "server.crt"),
			TLSKey:    getEnv("TLS_KEY", "server.key"),
			StaticDir: getEnv("STATIC_DIR", "./static/main"),
		},
		Auth: AuthConfig{
			TokenKey:     []byte(os.Getenv("TOKEN_KEY")),
			DatabaseURL:  os.Getenv("DATABASE_URL"),
			RateLimitRPS: getEnvFloat("RATE_LIMIT_RPS", 1),
			RateBurst:    getEnvInt("RATE_LIMIT_BURST", 3),
			SecureCookie: getEnvBool("SECURE_COOKIE", true),
		},
		Session: SessionConfig{
			TTL:           getEnvDuration("SESSION_TTL", 12*time.Hour),
			SweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
		},
		Rebar: RebarConfig{
			UnknownDiameter: policy,
		},
		Report: ReportConfig{
			Title: getEnv("REPORT_TITLE", "Calculadora de Acero"),
		},
	}
	if len(cfg.Auth.TokenKey) == 0 {
		return nil, errors.New("config: TOKEN_KEY environment variable is not set")
	}
	return cfg, nil
}

// TLS reports whether both certificate and key are configured.
func (s ServerConfig) TLS() bool {
	return s.TLSCert != "" && s.TLSKey != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
