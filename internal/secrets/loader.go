package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source describes how to resolve a secret value. Resolution order is
// Env, then File, then the inline Value; the first non-empty result wins.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Env names an environment variable holding the secret.
	Env string
	// File points to a file containing the secret value.
	File string
	// Value is an inline secret value provided via configuration or flags.
	Value string
}

// Load resolves the secret from the provided source. The returned secret is
// always trimmed. An error describing every location that was tried is
// returned when no usable value is found.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, nil
		}
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		if v := strings.TrimSpace(string(data)); v != "" {
			return v, nil
		}
		return "", fmt.Errorf("%s file %q is empty", name, file)
	}

	if v := strings.TrimSpace(src.Value); v != "" {
		return v, nil
	}

	return "", fmt.Errorf("%s is not configured", name)
}
