package config

import (
	"crypto/rand"
	"encoding/base64"
	"sync"

	"gopkg.in/yaml.v3"
)

// SecretString holds a sensitive value such as an API key or signing
// secret. It prints as "[hidden]" so it never reaches logs.
type SecretString struct {
	value    string
	isSecret bool
}

// NewSecretString creates a SecretString marked as sensitive.
func NewSecretString(value string) SecretString {
	return SecretString{value: value, isSecret: true}
}

// Value returns the actual secret value.
func (s SecretString) Value() string {
	return s.value
}

// IsSecret reports whether the value was tagged !secret.
func (s SecretString) IsSecret() bool {
	return s.isSecret
}

// String returns a redacted representation for logging.
func (s SecretString) String() string {
	if s.isSecret && s.value != "" {
		return "[hidden]"
	}
	return s.value
}

// IsAuto reports whether the value asks for a generated secret.
func (s SecretString) IsAuto() bool {
	return s.value == "auto"
}

// UnmarshalYAML implements yaml.Unmarshaler to handle the !secret tag.
func (s *SecretString) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!secret" {
		s.isSecret = true
	}
	var value string
	if err := node.Decode(&value); err != nil {
		return err
	}
	s.value = value
	return nil
}

// MarshalYAML writes secrets redacted, keeping the !secret tag.
func (s SecretString) MarshalYAML() (any, error) {
	if s.isSecret {
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!secret",
			Value: s.String(),
		}, nil
	}
	return s.value, nil
}

// SecretTracker records which config paths hold secret values.
type SecretTracker struct {
	mu    sync.RWMutex
	paths map[string]bool
}

// NewSecretTracker creates an empty SecretTracker.
func NewSecretTracker() *SecretTracker {
	return &SecretTracker{
		paths: make(map[string]bool),
	}
}

// MarkSecret marks a config path as containing a secret value.
func (t *SecretTracker) MarkSecret(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paths[path] = true
}

// IsSecret returns true if the given path contains a secret value.
func (t *SecretTracker) IsSecret(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.paths[path]
}

// Paths returns all paths that contain secret values.
func (t *SecretTracker) Paths() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	result := make([]string, 0, len(t.paths))
	for path := range t.paths {
		result = append(result, path)
	}
	return result
}

// GenerateSecureSecret returns 32 random bytes, base64 encoded.
func GenerateSecureSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// ResolveSecretValue returns envValue when set, a fresh random secret when
// s is "auto", and the configured value otherwise.
func ResolveSecretValue(s SecretString, envValue string) (string, error) {
	if envValue != "" {
		return envValue, nil
	}
	if s.IsAuto() {
		return GenerateSecureSecret()
	}
	return s.Value(), nil
}
