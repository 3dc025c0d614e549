package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvironmentReadsFileAndProcessWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "GROQ_API_KEY=from-file\nTAVILY_API_KEY=tvly-file\nBLANK_KEY=\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TAVILY_API_KEY", "tvly-process")

	env, err := LoadEnvironment(path)
	if err != nil {
		t.Fatalf("LoadEnvironment: %v", err)
	}
	if got := env.Get("GROQ_API_KEY"); got != "from-file" {
		t.Errorf("GROQ_API_KEY = %q", got)
	}
	if got := env.Get("TAVILY_API_KEY"); got != "tvly-process" {
		t.Errorf("process environment should win, got %q", got)
	}
	if _, ok := env.Lookup("BLANK_KEY"); ok {
		t.Error("blank values should count as unset")
	}
}

func TestLoadEnvironmentSkipsMissingFile(t *testing.T) {
	if _, err := LoadEnvironment(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing env file should be skipped, got %v", err)
	}
}

func TestNewEnvironmentCopiesValues(t *testing.T) {
	values := map[string]string{"A": "1"}
	env := NewEnvironment(values)
	values["A"] = "2"
	if env.Get("A") != "1" {
		t.Error("environment should not alias the caller's map")
	}
}
