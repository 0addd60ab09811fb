package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port == 0 {
		return os.ErrInvalid
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestExpand(t *testing.T) {
	t.Setenv("FV_SET", "value")
	t.Setenv("FV_EMPTY", "")

	tests := map[string]string{
		"${FV_SET}":             "value",
		"$FV_SET":               "value",
		"${FV_SET:-other}":      "value",
		"${FV_EMPTY:-fallback}": "fallback",
		"${FV_UNSET:-fallback}": "fallback",
		"${FV_UNSET}":           "",
		"a-${FV_UNSET:-}-b":     "a--b",
	}
	for in, want := range tests {
		if got := Expand(in); got != want {
			t.Errorf("Expand(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("FV_PORT", "9090")
	p := writeFile(t, "name: ${FV_NAME:-floativerse}\nport: ${FV_PORT}\n")

	var cfg sample
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "floativerse" || cfg.Port != 9090 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadValidation(t *testing.T) {
	p := writeFile(t, "name: x\n")
	var cfg sample
	err := Load(p, &cfg)
	if err == nil || !strings.Contains(err.Error(), "validation") {
		t.Fatalf("err = %v, want validation failure", err)
	}
}

func TestLoadWithDefaults(t *testing.T) {
	def := writeFile(t, "port: 1\n")
	var cfg sample
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), def, &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 1 {
		t.Errorf("port = %d", cfg.Port)
	}
	if err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"), "", &cfg); err == nil {
		t.Error("expected error without default file")
	}
}
