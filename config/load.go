package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a file with ENV interpolation.
// If configPath is empty, it searches default locations.
// HTTPS settings are checked by Validate, after CLI flags such as --dev
// have been applied.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the resolved path.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, "", err
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data, filepath.Dir(absPath), getenv)
	if err != nil {
		return nil, "", err
	}
	return cfg, absPath, nil
}

// Parse decodes YAML configuration on top of Defaults. Relative paths are
// resolved against baseDir.
func Parse(data []byte, baseDir string, getenv func(string) string) (*Config, error) {
	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	trackSecrets(cfg)
	cfg.BaseDir = baseDir

	if cfg.Database.Driver == "sqlite" && cfg.Database.Path != "" {
		cfg.Database.Path = resolvePath(baseDir, cfg.Database.Path)
	}
	if cfg.Report.Logo != "" {
		cfg.Report.Logo = resolvePath(baseDir, cfg.Report.Logo)
	}
	if cfg.Archive.Dir != "" {
		cfg.Archive.Dir = resolvePath(baseDir, cfg.Archive.Dir)
	}
	if cfg.Logging.Output != "" && cfg.Logging.Output != "stderr" && cfg.Logging.Output != "stdout" {
		cfg.Logging.Output = resolvePath(baseDir, cfg.Logging.Output)
	}

	// Run non-HTTPS validation only - HTTPS validation deferred until Validate()
	if err := validateBasic(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolvePath(baseDir, p string) string {
	if filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}

func trackSecrets(cfg *Config) {
	secrets := map[string]SecretString{
		"auth.jwt_secret":           cfg.Auth.JWTSecret,
		"email.mailgun.api_key":     cfg.Email.Mailgun.APIKey,
		"email.resend.api_key":      cfg.Email.Resend.APIKey,
		"database.dsn":              cfg.Database.DSN,
		"archive.secret_access_key": cfg.Archive.Secret,
	}
	for path, s := range secrets {
		if s.IsSecret() {
			cfg.Secrets.MarkSecret(path)
		}
	}
}

// Validate performs full configuration validation including HTTPS settings.
// Call this after applying CLI overrides (like --dev).
func Validate(cfg *Config) error {
	if err := validateBasic(cfg); err != nil {
		return err
	}
	return validateHTTPS(cfg)
}

// Warnings returns non-fatal configuration issues that should be reported to the user.
func Warnings(cfg *Config) []string {
	var warnings []string

	switch cfg.Email.Provider {
	case "mailgun":
		if cfg.Email.Mailgun.APIKey.Value() == "" || cfg.Email.Mailgun.Domain == "" {
			warnings = append(warnings, "email: Mailgun selected but api_key or domain not configured")
		}
		if !cfg.Server.Dev && strings.Contains(cfg.Email.Mailgun.Domain, "sandbox") {
			warnings = append(warnings, "email: using Mailgun sandbox domain in production mode - emails will only be delivered to authorized recipients")
		}
	case "resend":
		if cfg.Email.Resend.APIKey.Value() == "" {
			warnings = append(warnings, "email: Resend selected but api_key not configured")
		}
	case "log":
		if !cfg.Server.Dev {
			warnings = append(warnings, "email: provider is 'log' - password reset links are written to the log instead of being sent")
		}
	}

	if cfg.Auth.BaseURL == "" {
		warnings = append(warnings, "auth.base_url not set - password reset links will use the request host")
	}

	if cfg.Auth.JWTSecret.IsAuto() {
		warnings = append(warnings, "auth.jwt_secret is 'auto' - sessions will not survive a restart")
	}

	if cfg.History.Store == "memory" {
		warnings = append(warnings, "history.store is 'memory' - saved calculations are lost on restart")
	}

	return warnings
}

// ErrNoConfig is returned when no config file is named and none exists in
// the default locations.
var ErrNoConfig = errors.New("no config file found")

// resolveConfigPath finds the config file to use.
// Search order: explicit path > IELEC_CONFIG env > ./ielec.yaml > ~/.config/ielec/ielec.yaml
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	if envPath := getenv("IELEC_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("IELEC_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}

	if _, err := os.Stat("ielec.yaml"); err == nil {
		return "ielec.yaml", nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		xdgPath := filepath.Join(home, ".config", "ielec", "ielec.yaml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath, nil
		}
	}

	return "", fmt.Errorf("%w (tried IELEC_CONFIG, ielec.yaml, ~/.config/ielec/ielec.yaml)", ErrNoConfig)
}

// envPattern matches ${VAR} or ${VAR:-default}
var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		value := getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}
		return []byte(value)
	})
}

// validateBasic checks non-HTTPS configuration for errors.
func validateBasic(cfg *Config) error {
	var errs []string

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port: %d (must be 1-65535)", cfg.Server.Port))
	}
	if cfg.Server.MaxConnections < 0 {
		errs = append(errs, "server.max_connections cannot be negative")
	}
	if _, err := ParseSize(cfg.Server.MaxBodySize); err != nil {
		errs = append(errs, fmt.Sprintf("server.max_body_size: %v", err))
	}

	switch cfg.Database.Driver {
	case "sqlite":
		if cfg.Database.Path == "" {
			errs = append(errs, "database.path is required for sqlite")
		}
	case "postgres", "mysql":
		if cfg.Database.DSN.Value() == "" {
			errs = append(errs, fmt.Sprintf("database.dsn is required for %s", cfg.Database.Driver))
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid database driver: %q (must be sqlite, postgres, or mysql)", cfg.Database.Driver))
	}

	switch cfg.Email.Provider {
	case "mailgun", "resend", "log":
	default:
		errs = append(errs, fmt.Sprintf("invalid email provider: %q (must be mailgun, resend, or log)", cfg.Email.Provider))
	}

	switch cfg.Archive.Type {
	case "", "none":
	case "filesystem":
		if cfg.Archive.Dir == "" {
			errs = append(errs, "archive.dir is required for filesystem archive")
		}
	case "s3":
		if cfg.Archive.Bucket == "" {
			errs = append(errs, "archive.bucket is required for s3 archive")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid archive type: %q (must be none, filesystem, or s3)", cfg.Archive.Type))
	}

	if cfg.Auth.Registration != "open" && cfg.Auth.Registration != "closed" {
		errs = append(errs, fmt.Sprintf("auth.registration must be 'open' or 'closed', got %q", cfg.Auth.Registration))
	}
	if cfg.Auth.TokenTTL <= 0 {
		errs = append(errs, "auth.token_ttl must be positive")
	}
	if cfg.Auth.ResetTokenTTL <= 0 {
		errs = append(errs, "auth.reset_token_ttl must be positive")
	}
	if cfg.Auth.MinPasswordLength < 1 {
		errs = append(errs, "auth.min_password_length must be at least 1")
	}

	if cfg.History.MaxPerUser < 0 {
		errs = append(errs, "history.max_per_user cannot be negative")
	}
	switch cfg.History.Store {
	case "", "sql", "memory":
	default:
		errs = append(errs, fmt.Sprintf("invalid history.store: %s (must be sql or memory)", cfg.History.Store))
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", cfg.Logging.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be json or text)", cfg.Logging.Format))
	}

	if len(cfg.CORS.Origins) > 0 {
		if cfg.CORS.Credentials && cfg.CORS.Origins.Contains("*") {
			errs = append(errs, "cors: cannot use origins '*' with credentials true (browsers reject this)")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// validateHTTPS checks HTTPS-specific configuration.
func validateHTTPS(cfg *Config) error {
	if cfg.Server.Dev {
		return nil
	}

	var errs []string
	if cfg.Server.HTTPS.Cert == "" || cfg.Server.HTTPS.Key == "" {
		// Behind a trusted proxy TLS is terminated upstream.
		if !cfg.Server.Proxy.Trusted {
			errs = append(errs, "production mode requires https.cert and https.key, or proxy.trusted behind a TLS-terminating proxy")
		}
	}
	if cfg.Auth.JWTSecret.Value() == "" {
		errs = append(errs, "auth.jwt_secret is required in production mode")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ParseSize parses a size string like "10MB", "1GB", "500KB" to bytes.
// Supports: B, KB, MB, GB (case insensitive).
// Returns 0 for empty string.
func ParseSize(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}

	s = strings.TrimSpace(strings.ToUpper(s))

	// Check suffixes in order of length (longest first) to avoid "B" matching before "MB"
	suffixes := []struct {
		suffix string
		mult   int64
	}{
		{"GB", 1024 * 1024 * 1024},
		{"MB", 1024 * 1024},
		{"KB", 1024},
		{"B", 1},
	}

	for _, sf := range suffixes {
		if strings.HasSuffix(s, sf.suffix) {
			numStr := strings.TrimSpace(strings.TrimSuffix(s, sf.suffix))
			var num int64
			if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
				return 0, fmt.Errorf("invalid size number: %s", numStr)
			}
			return num * sf.mult, nil
		}
	}

	var num int64
	if _, err := fmt.Sscanf(s, "%d", &num); err != nil {
		return 0, fmt.Errorf("invalid size format: %s (use B, KB, MB, or GB suffix)", s)
	}
	return num, nil
}

// Redacted renders the configuration as YAML with secrets hidden.
func Redacted(cfg *Config) ([]byte, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return out, nil
}
