package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Load reads a YAML content file and builds the validated bundle.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	return Parse(data)
}

// Parse builds a bundle from raw YAML.
func Parse(data []byte) (*Bundle, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}
	return New(&doc)
}
