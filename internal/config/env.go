package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// DefaultEnvFile is read from the working directory when present.
const DefaultEnvFile = ".env"

// Environment is an immutable snapshot of the variables the agent reads.
// Process environment wins over values from env files.
type Environment struct {
	values map[string]string
}

// NewEnvironment builds an Environment from explicit values.
func NewEnvironment(values map[string]string) Environment {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return Environment{values: copied}
}

// LoadEnvironment reads the given env files (DefaultEnvFile when none are
// named) and overlays the process environment. Missing files are skipped.
func LoadEnvironment(files ...string) (Environment, error) {
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}

	values := make(map[string]string)
	for _, file := range files {
		if file == "" {
			continue
		}
		if _, err := os.Stat(file); os.IsNotExist(err) {
			continue
		}
		fileValues, err := godotenv.Read(file)
		if err != nil {
			return Environment{}, errors.Wrapf(err, "failed to read env file %s", file)
		}
		for k, v := range fileValues {
			values[k] = v
		}
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			values[k] = v
		}
	}

	return Environment{values: values}, nil
}

// Lookup returns the trimmed value of name. Blank values count as unset.
func (e Environment) Lookup(name string) (string, bool) {
	v, ok := e.values[name]
	v = strings.TrimSpace(v)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Get returns the value of name or "".
func (e Environment) Get(name string) string {
	v, _ := e.Lookup(name)
	return v
}
