package manifest

import (
	"path/filepath"
	"testing"
)

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	if _, _, ok := Detect(dir); ok {
		t.Fatal("empty directory should not be detected")
	}

	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "x"}`)
	a, path, ok := Detect(dir)
	if !ok || a.Dialect() != JSON {
		t.Fatalf("Detect = %v, %v; want JSON", a, ok)
	}
	if path != filepath.Join(dir, "package.json") {
		t.Errorf("path = %q", path)
	}

	writeFile(t, filepath.Join(dir, "Cargo.toml"), "[package]\nname = \"x\"\n")
	if a, _, _ := Detect(dir); a.Dialect() != TOML {
		t.Errorf("Detect dialect = %s, want toml when both manifests exist", a.Dialect())
	}
}

func TestForDialect(t *testing.T) {
	for _, d := range []Dialect{TOML, JSON} {
		a, err := ForDialect(d)
		if err != nil {
			t.Fatalf("ForDialect(%s) error = %v", d, err)
		}
		if a.Dialect() != d {
			t.Errorf("ForDialect(%s).Dialect() = %s", d, a.Dialect())
		}
	}
	if _, err := ForDialect("yaml"); err == nil {
		t.Error("ForDialect(yaml) should fail")
	}
}

func TestEdit_Apply(t *testing.T) {
	got := Edit{Start: 4, End: 7, Text: "two"}.Apply([]byte("one 111 three"))
	if string(got) != "one two three" {
		t.Errorf("Apply = %q", got)
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("version = \"1.0.0\""))
	b := Fingerprint([]byte("version = \"1.0.1\""))
	if a == b {
		t.Error("different content should have different fingerprints")
	}
	if a != Fingerprint([]byte("version = \"1.0.0\"")) {
		t.Error("fingerprint should be deterministic")
	}
}
