package config

import (
	"encoding/base64"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSecretString_UnmarshalTagged(t *testing.T) {
	var v struct {
		Key   SecretString `yaml:"key"`
		Plain SecretString `yaml:"plain"`
	}
	if err := yaml.Unmarshal([]byte("key: !secret abc\nplain: xyz\n"), &v); err != nil {
		t.Fatal(err)
	}

	if !v.Key.IsSecret() || v.Key.Value() != "abc" {
		t.Errorf("expected secret 'abc', got %q (secret=%v)", v.Key.Value(), v.Key.IsSecret())
	}
	if v.Plain.IsSecret() {
		t.Error("untagged value should not be secret")
	}
	if v.Key.String() != "[hidden]" {
		t.Errorf("expected redacted String(), got %q", v.Key.String())
	}
	if v.Plain.String() != "xyz" {
		t.Errorf("expected plain String(), got %q", v.Plain.String())
	}
}

func TestResolveSecretValue(t *testing.T) {
	got, err := ResolveSecretValue(NewSecretString("configured"), "from-env")
	if err != nil || got != "from-env" {
		t.Errorf("expected env override, got %q (%v)", got, err)
	}

	got, err = ResolveSecretValue(NewSecretString("configured"), "")
	if err != nil || got != "configured" {
		t.Errorf("expected configured value, got %q (%v)", got, err)
	}

	got, err = ResolveSecretValue(NewSecretString("auto"), "")
	if err != nil {
		t.Fatal(err)
	}
	raw, err := base64.StdEncoding.DecodeString(got)
	if err != nil || len(raw) != 32 {
		t.Errorf("expected 32 random bytes, got %q", got)
	}
}

func TestSecretTracker(t *testing.T) {
	tr := NewSecretTracker()
	tr.MarkSecret("a.b")
	if !tr.IsSecret("a.b") || tr.IsSecret("c") {
		t.Error("tracker did not record paths correctly")
	}
	if len(tr.Paths()) != 1 {
		t.Errorf("expected 1 path, got %v", tr.Paths())
	}
}
