package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

// Adapter reads and rewrites manifests of one dialect.
type Adapter interface {
	Dialect() Dialect
	// FileName is the manifest file name looked for in a package directory.
	FileName() string
	// Read loads and parses the manifest at path.
	Read(path string) (*Document, error)
	// Parse parses manifest content. Missing and malformed version fields are
	// reported through Document.Field, never as errors.
	Parse(path string, data []byte) (*Document, error)
	// Write returns doc.Data with the version field replaced by f.
	Write(doc *Document, f VersionField) ([]byte, error)
}

// Adapters returns the supported dialects in detection order.
func Adapters() []Adapter {
	return []Adapter{Cargo{}, NPM{}}
}

// ForDialect returns the adapter for d.
func ForDialect(d Dialect) (Adapter, error) {
	for _, a := range Adapters() {
		if a.Dialect() == d {
			return a, nil
		}
	}
	return nil, fmt.Errorf("unknown manifest dialect: %q", d)
}

// Detect returns the first adapter whose manifest exists in dir.
func Detect(dir string) (Adapter, string, bool) {
	for _, a := range Adapters() {
		p := filepath.Join(dir, a.FileName())
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return a, p, true
		}
	}
	return nil, "", false
}

// Fingerprint returns the content hash used to detect concurrent modification.
func Fingerprint(data []byte) [32]byte {
	return blake3.Sum256(data)
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is a discovered manifest
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return data, nil
}

// dirName is the fallback package name for manifests without one.
func dirName(path string) string {
	return filepath.Base(filepath.Dir(path))
}

// checkRewrite re-parses a rewritten manifest and confirms the field and
// package name came out as intended.
func checkRewrite(a Adapter, doc *Document, out []byte, f VersionField) error {
	got, err := a.Parse(doc.Path, out)
	if err != nil {
		return &SerializationError{Path: doc.Path, Reason: fmt.Sprintf("rewritten manifest does not parse: %v", err)}
	}
	if !got.Field.Same(f) {
		return &SerializationError{Path: doc.Path, Reason: fmt.Sprintf("rewritten field reads back as %s, want %s", got.Field, f)}
	}
	if got.Name != doc.Name {
		return &SerializationError{Path: doc.Path, Reason: fmt.Sprintf("package name changed from %q to %q", doc.Name, got.Name)}
	}
	return nil
}
