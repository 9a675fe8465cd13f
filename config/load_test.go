package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func noenv(string) string { return "" }

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 443 {
		t.Errorf("expected default port 443, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level 'info', got %q", cfg.Logging.Level)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Errorf("expected default token ttl 1h, got %v", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.ResetTokenTTL != 15*time.Minute {
		t.Errorf("expected default reset ttl 15m, got %v", cfg.Auth.ResetTokenTTL)
	}
	if cfg.Auth.MinPasswordLength != 6 {
		t.Errorf("expected min password length 6, got %d", cfg.Auth.MinPasswordLength)
	}
	if cfg.Auth.CookieName != "token" {
		t.Errorf("expected cookie name 'token', got %q", cfg.Auth.CookieName)
	}
	if cfg.History.MaxPerUser != 10 {
		t.Errorf("expected 10 history records per user, got %d", cfg.History.MaxPerUser)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %q", cfg.Database.Driver)
	}
}

func TestInterpolateEnv(t *testing.T) {
	getenv := func(key string) string {
		switch key {
		case "TEST_HOST":
			return "example.com"
		case "TEST_PORT":
			return "9000"
		default:
			return ""
		}
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple substitution", "host: ${TEST_HOST}", "host: example.com"},
		{"with default (env set)", "host: ${TEST_HOST:-localhost}", "host: example.com"},
		{"with default (env not set)", "host: ${UNSET_VAR:-localhost}", "host: localhost"},
		{"multiple substitutions", "addr: ${TEST_HOST}:${TEST_PORT}", "addr: example.com:9000"},
		{"no substitution needed", "static: value", "static: value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := string(interpolateEnv([]byte(tt.input), getenv))
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "ielec.yaml")

	content := `
server:
  host: localhost
  port: 8080
  max_connections: 50

database:
  driver: sqlite
  path: data/ielec.db

auth:
  jwt_secret: !secret ${JWT_SECRET:-fallback}
  token_ttl: 2h

email:
  provider: resend
  from: calculos@example.com
  resend:
    api_key: !secret re_123

report:
  logo: logo.png

logging:
  level: debug
  format: json
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	getenv := func(key string) string {
		if key == "JWT_SECRET" {
			return "s3cr3t"
		}
		return ""
	}

	cfg, path, err := LoadWithPath(configPath, getenv)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if path != configPath {
		t.Errorf("expected path %q, got %q", configPath, path)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxConnections != 50 {
		t.Errorf("expected max_connections 50, got %d", cfg.Server.MaxConnections)
	}
	if cfg.Auth.JWTSecret.Value() != "s3cr3t" {
		t.Errorf("expected interpolated jwt secret, got %q", cfg.Auth.JWTSecret.Value())
	}
	if cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("expected token ttl 2h, got %v", cfg.Auth.TokenTTL)
	}
	// Unset fields keep their defaults
	if cfg.Auth.ResetTokenTTL != 15*time.Minute {
		t.Errorf("expected default reset ttl, got %v", cfg.Auth.ResetTokenTTL)
	}
	if want := filepath.Join(dir, "data", "ielec.db"); cfg.Database.Path != want {
		t.Errorf("expected database path %q, got %q", want, cfg.Database.Path)
	}
	if want := filepath.Join(dir, "logo.png"); cfg.Report.Logo != want {
		t.Errorf("expected logo path %q, got %q", want, cfg.Report.Logo)
	}
	if !cfg.Secrets.IsSecret("auth.jwt_secret") || !cfg.Secrets.IsSecret("email.resend.api_key") {
		t.Errorf("expected secrets to be tracked, got %v", cfg.Secrets.Paths())
	}
	if cfg.Secrets.IsSecret("database.dsn") {
		t.Error("database.dsn was not tagged and should not be tracked")
	}
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), noenv)
	if err == nil {
		t.Fatal("expected error for missing config")
	}
	if !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_EnvPath(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(configPath, []byte("server:\n  port: 9090\n"), 0644); err != nil {
		t.Fatal(err)
	}

	getenv := func(key string) string {
		if key == "IELEC_CONFIG" {
			return configPath
		}
		return ""
	}

	cfg, err := Load("", getenv)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"bad port", "server:\n  port: 70000\n", "invalid port"},
		{"bad driver", "database:\n  driver: oracle\n", "invalid database driver"},
		{"postgres without dsn", "database:\n  driver: postgres\n", "database.dsn is required for postgres"},
		{"bad provider", "email:\n  provider: carrier-pigeon\n", "invalid email provider"},
		{"s3 without bucket", "archive:\n  type: s3\n", "archive.bucket is required"},
		{"bad registration", "auth:\n  registration: maybe\n", "auth.registration"},
		{"bad log level", "logging:\n  level: loud\n", "invalid log level"},
		{"bad body size", "server:\n  max_body_size: lots\n", "server.max_body_size"},
		{"wildcard cors with credentials", "cors:\n  origins: '*'\n  credentials: true\n", "cors: cannot use origins '*'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), t.TempDir(), noenv)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestParse_CollectsAllErrors(t *testing.T) {
	_, err := Parse([]byte("server:\n  port: 0\nlogging:\n  format: xml\n"), "", noenv)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid port") || !strings.Contains(err.Error(), "invalid log format") {
		t.Errorf("expected both errors to be reported, got %v", err)
	}
}

func TestValidate_HTTPS(t *testing.T) {
	cfg := Defaults()
	cfg.Auth.JWTSecret = NewSecretString("x")
	if err := Validate(cfg); err == nil {
		t.Error("expected production mode without certificates to fail")
	}

	cfg.Server.Proxy.Trusted = true
	if err := Validate(cfg); err != nil {
		t.Errorf("expected trusted proxy to satisfy https, got %v", err)
	}

	cfg = Defaults()
	cfg.Server.Dev = true
	if err := Validate(cfg); err != nil {
		t.Errorf("dev mode should skip https validation, got %v", err)
	}
}

func TestWarnings(t *testing.T) {
	cfg := Defaults()
	cfg.Email.Provider = "mailgun"
	cfg.Email.Mailgun.Domain = "sandbox123.mailgun.org"

	warnings := strings.Join(Warnings(cfg), "\n")
	for _, want := range []string{"api_key or domain not configured", "sandbox domain", "jwt_secret is 'auto'", "base_url not set"} {
		if !strings.Contains(warnings, want) {
			t.Errorf("expected warning containing %q, got:\n%s", want, warnings)
		}
	}
}

func TestValidate_HistoryStore(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Dev = true
	cfg.History.Store = "memory"
	if err := Validate(cfg); err != nil {
		t.Errorf("memory history store should validate, got %v", err)
	}
	if !strings.Contains(strings.Join(Warnings(cfg), "\n"), "history.store is 'memory'") {
		t.Error("expected a warning for the memory history store")
	}

	cfg.History.Store = "redis"
	if err := Validate(cfg); err == nil || !strings.Contains(err.Error(), "history.store") {
		t.Errorf("expected history.store error, got %v", err)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"512", 512},
		{"1KB", 1024},
		{"10mb", 10 * 1024 * 1024},
		{" 2 GB ", 2 * 1024 * 1024 * 1024},
	}
	for _, tt := range tests {
		got, err := ParseSize(tt.in)
		if err != nil {
			t.Errorf("ParseSize(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}

	if _, err := ParseSize("12XB"); err == nil {
		t.Error("expected error for unknown suffix")
	}
}

func TestRedacted(t *testing.T) {
	cfg := Defaults()
	cfg.Auth.JWTSecret = NewSecretString("super-secret-value")

	out, err := Redacted(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(out), "super-secret-value") {
		t.Error("secret leaked into redacted output")
	}
	if !strings.Contains(string(out), "[hidden]") {
		t.Errorf("expected [hidden] marker, got:\n%s", out)
	}
}
