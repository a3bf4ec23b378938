package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Level string `yaml:"level"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "folio")
	target := &sample{Port: 8080, Level: "info"}
	if err := Load(write(t, "name: ${SAMPLE_NAME}\nport: 9000\n"), target); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if target.Name != "folio" || target.Port != 9000 || target.Level != "info" {
		t.Errorf("target = %+v", target)
	}
}

func TestLoad_Errors(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "missing.yaml"), &sample{}); err == nil {
		t.Error("missing file should fail")
	}
	if err := Load(write(t, "port: [1, 2\n"), &sample{}); err == nil {
		t.Error("malformed yaml should fail")
	}
	err := Load(write(t, "port: 0\n"), &sample{})
	if err == nil || !strings.Contains(err.Error(), "validation") {
		t.Errorf("err = %v, want validation failure", err)
	}
}

func TestLoadOptional(t *testing.T) {
	target := &sample{Port: 1}
	found, err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), target)
	if err != nil || found {
		t.Fatalf("found = %v, err = %v", found, err)
	}

	_, err = LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &sample{})
	if err == nil {
		t.Error("defaults are still validated when the file is missing")
	}

	found, err = LoadOptional(write(t, "port: 3\n"), target)
	if err != nil || !found || target.Port != 3 {
		t.Errorf("found = %v, err = %v, target = %+v", found, err, target)
	}
}
