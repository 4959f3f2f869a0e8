package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// WriteTree writes files (slash-separated relative path -> content) under a new
// temp directory and returns the directory.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	AddFiles(t, dir, files)
	return dir
}

// AddFiles writes files under dir, creating parent directories.
func AddFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		full := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(files[p]), 0o644); err != nil { //nolint:gosec // test file
			t.Fatal(err)
		}
	}
}

// ReadFile returns the content of dir/rel.
func ReadFile(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel))) //nolint:gosec // test file
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// Crate returns a member Cargo.toml. An empty version omits the field and
// "workspace" writes the inheritance marker.
func Crate(name, version string) string {
	s := fmt.Sprintf("[package]\nname = %q\n", name)
	switch version {
	case "":
	case "workspace":
		s += "version.workspace = true\n"
	default:
		s += fmt.Sprintf("version = %q\n", version)
	}
	return s + "edition = \"2021\"\n\n[dependencies]\n"
}

// CargoRoot returns a virtual workspace Cargo.toml.
func CargoRoot(version string, members ...string) string {
	s := "[workspace]\nmembers = ["
	for i, m := range members {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%q", m)
	}
	s += "]\nresolver = \"2\"\n"
	if version != "" {
		s += fmt.Sprintf("\n[workspace.package]\nversion = %q\nedition = \"2021\"\n", version)
	}
	return s
}

// NPMPackage returns a package.json. An empty version omits the field.
func NPMPackage(name, version string) string {
	if version == "" {
		return fmt.Sprintf("{\n  \"name\": %q,\n  \"private\": true\n}\n", name)
	}
	return fmt.Sprintf("{\n  \"name\": %q,\n  \"version\": %q,\n  \"private\": true\n}\n", name, version)
}

// NPMRoot returns a root package.json declaring workspaces.
func NPMRoot(name, version string, workspaces ...string) string {
	ws := ""
	for i, w := range workspaces {
		if i > 0 {
			ws += ", "
		}
		ws += fmt.Sprintf("%q", w)
	}
	if version == "" {
		return fmt.Sprintf("{\n  \"name\": %q,\n  \"private\": true,\n  \"workspaces\": [%s]\n}\n", name, ws)
	}
	return fmt.Sprintf("{\n  \"name\": %q,\n  \"version\": %q,\n  \"private\": true,\n  \"workspaces\": [%s]\n}\n", name, version, ws)
}
