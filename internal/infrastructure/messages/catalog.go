package messages

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Required catalog keys. Startup fails fast on a hole instead of
// surfacing a blank reply to a user at runtime.
var requiredKeys = []string{
	"answer",
	"answer-no",
	"error",
	"like",
	"dislike",
	"pipeline",
	"verbose-select",
	"verbose-enabled",
	"verbose-disabled",
}

// LoadCatalog reads the flat key -> template YAML file used for every
// user-facing chat reply. Templates use {placeholder} substitution.
func LoadCatalog(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read message catalog: %w", err)
	}

	catalog := make(map[string]string)
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse message catalog: %w", err)
	}

	for _, key := range requiredKeys {
		if catalog[key] == "" {
			return nil, fmt.Errorf("message catalog: missing key %q", key)
		}
	}
	return catalog, nil
}
