package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PNPMWorkspaceFile is the pnpm member list that sits next to package.json.
const PNPMWorkspaceFile = "pnpm-workspace.yaml"

type pnpmWorkspace struct {
	Packages []string `yaml:"packages"`
}

func readPNPMWorkspace(dir string) (*Members, bool, error) {
	path := filepath.Join(dir, PNPMWorkspaceFile)
	data, err := os.ReadFile(path) //nolint:gosec // sibling of a discovered manifest
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", PNPMWorkspaceFile, err)
	}
	m, err := parsePNPMWorkspace(path, data)
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func parsePNPMWorkspace(path string, data []byte) (*Members, error) {
	var ws pnpmWorkspace
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	m := &Members{Source: path}
	for _, p := range ws.Packages {
		if ex, ok := strings.CutPrefix(p, "!"); ok {
			m.Exclude = append(m.Exclude, ex)
			continue
		}
		m.Patterns = append(m.Patterns, p)
	}
	return m, nil
}
