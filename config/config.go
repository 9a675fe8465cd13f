package config

import (
	"slices"
	"time"
)

// Config represents the complete ielec configuration
type Config struct {
	BaseDir     string            `yaml:"-"` // Directory containing config file, for resolving relative paths
	Server      ServerConfig      `yaml:"server"`
	Security    SecurityConfig    `yaml:"security"`
	CORS        CORSConfig        `yaml:"cors"`
	Compression CompressionConfig `yaml:"compression"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Auth        AuthConfig        `yaml:"auth"`
	Email       EmailConfig       `yaml:"email"`
	Database    DatabaseConfig    `yaml:"database"`
	History     HistoryConfig     `yaml:"history"`
	Report      ReportConfig      `yaml:"report"`
	Archive     ArchiveConfig     `yaml:"archive"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Logging     LoggingConfig     `yaml:"logging"`
	Secrets     *SecretTracker    `yaml:"-"` // Tracks which config paths contain secrets
}

// ServerConfig holds server settings
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	Dev            bool          `yaml:"-"` // Set via CLI flag, not config
	HTTPS          HTTPSConfig   `yaml:"https"`
	Proxy          ProxyConfig   `yaml:"proxy"`
	MaxConnections int           `yaml:"max_connections"` // Concurrent connection cap (0 = unlimited)
	MaxBodySize    string        `yaml:"max_body_size"`   // Request body limit, e.g. "1MB"
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

// HTTPSConfig holds TLS settings
type HTTPSConfig struct {
	Cert string `yaml:"cert"` // Certificate path
	Key  string `yaml:"key"`  // Key path
}

// ProxyConfig holds reverse proxy settings
type ProxyConfig struct {
	Trusted    bool     `yaml:"trusted"`     // Trust X-Forwarded-* headers
	TrustedIPs []string `yaml:"trusted_ips"` // Optional: restrict to specific proxies
}

// SecurityConfig holds security header settings
type SecurityConfig struct {
	HSTS               HSTSConfig `yaml:"hsts"`                 // HTTP Strict Transport Security
	ContentTypeOptions string     `yaml:"content_type_options"` // X-Content-Type-Options (default: "nosniff")
	FrameOptions       string     `yaml:"frame_options"`        // X-Frame-Options (default: "DENY")
	ReferrerPolicy     string     `yaml:"referrer_policy"`      // Referrer-Policy (default: "strict-origin-when-cross-origin")
	CSP                string     `yaml:"csp"`                  // Content-Security-Policy
}

// HSTSConfig holds HSTS settings
type HSTSConfig struct {
	Enabled           bool   `yaml:"enabled"`
	MaxAge            string `yaml:"max_age"` // seconds (default: "31536000" = 1 year)
	IncludeSubDomains bool   `yaml:"include_subdomains"`
}

// CORSConfig holds CORS (Cross-Origin Resource Sharing) settings
type CORSConfig struct {
	Origins     StringOrSlice `yaml:"origins"`     // "*" or list of allowed origins
	Methods     []string      `yaml:"methods"`     // Allowed HTTP methods
	Headers     []string      `yaml:"headers"`     // Allowed request headers
	Credentials bool          `yaml:"credentials"` // Allow credentials (cookies, auth headers)
	MaxAge      int           `yaml:"maxAge"`      // Preflight cache duration in seconds
}

// CompressionConfig holds HTTP response compression settings
type CompressionConfig struct {
	Enabled bool   `yaml:"enabled"`  // Enable gzip compression (default: true)
	Level   string `yaml:"level"`    // "fastest", "default", "best", "none"
	MinSize int    `yaml:"min_size"` // Minimum response size to compress in bytes (default: 1024)
}

// RateLimitConfig limits API requests per client
type RateLimitConfig struct {
	Requests int           `yaml:"requests"` // Requests allowed per window (0 = disabled)
	Window   time.Duration `yaml:"window"`
}

// StringOrSlice supports YAML fields that can be either a string or a slice of strings
type StringOrSlice []string

// UnmarshalYAML implements yaml.Unmarshaler to handle both string and []string
func (s *StringOrSlice) UnmarshalYAML(unmarshal func(any) error) error {
	var single string
	if err := unmarshal(&single); err == nil {
		*s = []string{single}
		return nil
	}

	var slice []string
	if err := unmarshal(&slice); err != nil {
		return err
	}
	*s = slice
	return nil
}

// Contains checks if the slice contains the given string
func (s StringOrSlice) Contains(str string) bool {
	return slices.Contains(s, str)
}

// AuthConfig holds authentication settings
type AuthConfig struct {
	Registration      string        `yaml:"registration"`        // "open" or "closed" (CLI only)
	JWTSecret         SecretString  `yaml:"jwt_secret"`          // Signing key (use !secret auto to generate one per start)
	TokenTTL          time.Duration `yaml:"token_ttl"`           // Credential lifetime (default: 1h)
	CookieName        string        `yaml:"cookie_name"`         // default: "token"
	ResetTokenTTL     time.Duration `yaml:"reset_token_ttl"`     // Password reset link lifetime (default: 15m)
	MinPasswordLength int           `yaml:"min_password_length"` // default: 6
	ResetCooldown     time.Duration `yaml:"reset_cooldown"`      // Minimum time between reset emails (default: 1m)
	MaxResetsPerDay   int           `yaml:"max_resets_per_day"`  // Per email abuse limit (default: 10)
	BaseURL           string        `yaml:"base_url"`            // Public URL used in emailed links
}

// EmailConfig selects and configures the outgoing email provider
type EmailConfig struct {
	Provider string        `yaml:"provider"` // "mailgun", "resend" or "log"
	From     string        `yaml:"from"`
	SiteName string        `yaml:"site_name"`
	Mailgun  MailgunConfig `yaml:"mailgun"`
	Resend   ResendConfig  `yaml:"resend"`
}

// MailgunConfig holds Mailgun-specific settings
type MailgunConfig struct {
	APIKey SecretString `yaml:"api_key"`
	Domain string       `yaml:"domain"`
	Region string       `yaml:"region"` // "us" or "eu"
}

// ResendConfig holds Resend-specific settings
type ResendConfig struct {
	APIKey SecretString `yaml:"api_key"`
}

// DatabaseConfig selects the SQL backend
type DatabaseConfig struct {
	Driver string       `yaml:"driver"` // "sqlite", "postgres" or "mysql"
	Path   string       `yaml:"path"`   // SQLite file (relative to the config file)
	DSN    SecretString `yaml:"dsn"`    // Connection string for postgres and mysql
}

// HistoryConfig controls stored calculations
type HistoryConfig struct {
	Store      string `yaml:"store"`        // "sql" (default) or "memory" (lost on restart)
	MaxPerUser int    `yaml:"max_per_user"` // Records kept per user and calculator (0 = unlimited)
}

// ReportConfig holds document branding
type ReportConfig struct {
	Organization string `yaml:"organization"` // Printed in the page header
	Logo         string `yaml:"logo"`         // PNG logo path (relative to the config file)
	Locale       string `yaml:"locale"`       // Date and number locale (default: "es_MX")
}

// ArchiveConfig stores generated PDFs
type ArchiveConfig struct {
	Type     string       `yaml:"type"` // "none", "filesystem" or "s3"
	Dir      string       `yaml:"dir"`  // filesystem root
	Bucket   string       `yaml:"bucket"`
	Prefix   string       `yaml:"prefix"`
	Region   string       `yaml:"region"`
	Endpoint string       `yaml:"endpoint"` // S3-compatible endpoint (MinIO)
	KeyID    string       `yaml:"access_key_id"`
	Secret   SecretString `yaml:"secret_access_key"`
}

// MetricsConfig exposes Prometheus metrics
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"` // default: "/metrics"
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
	Output string `yaml:"output"` // stderr, stdout, or file path
	Quiet  bool   `yaml:"quiet"`  // suppress request logs
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         443,
			MaxBodySize:  "1MB",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Security: SecurityConfig{
			HSTS: HSTSConfig{
				Enabled:           true,
				MaxAge:            "31536000", // 1 year
				IncludeSubDomains: true,
			},
			ContentTypeOptions: "nosniff",
			FrameOptions:       "DENY",
			ReferrerPolicy:     "strict-origin-when-cross-origin",
		},
		CORS: CORSConfig{
			Methods: []string{"GET", "HEAD", "POST", "DELETE"},
			MaxAge:  86400, // 24 hours
		},
		Compression: CompressionConfig{
			Enabled: true,
			Level:   "default",
			MinSize: 1024,
		},
		RateLimit: RateLimitConfig{
			Requests: 120,
			Window:   time.Minute,
		},
		Auth: AuthConfig{
			Registration:      "open",
			JWTSecret:         NewSecretString("auto"),
			TokenTTL:          time.Hour,
			CookieName:        "token",
			ResetTokenTTL:     15 * time.Minute,
			MinPasswordLength: 6,
			ResetCooldown:     time.Minute,
			MaxResetsPerDay:   10,
		},
		Email: EmailConfig{
			Provider: "log",
			SiteName: "ielec",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "ielec.db",
		},
		History: HistoryConfig{
			Store:      "sql",
			MaxPerUser: 10,
		},
		Report: ReportConfig{
			Organization: "Instalaciones Eléctricas",
			Locale:       "es_MX",
		},
		Archive: ArchiveConfig{
			Type: "none",
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Secrets: NewSecretTracker(),
	}
}
