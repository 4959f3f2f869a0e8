package journal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a recovery journal.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is the workspace journal path
	if err != nil {
		return nil, fmt.Errorf("reading recovery journal: %w", err)
	}
	return Parse(data)
}

// Parse parses recovery journal content.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing recovery journal YAML: %w", err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported recovery journal version: %d (expected 1)", f.Version)
	}
	return &f, nil
}

// Save writes the journal to disk.
func Save(path string, f *File) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling recovery journal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil { //nolint:gosec // journal needs to be readable
		return fmt.Errorf("writing recovery journal: %w", err)
	}
	return nil
}
