package txn

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fbkclanna/odometer/internal/journal"
	"github.com/fbkclanna/odometer/internal/manifest"
	"github.com/fbkclanna/odometer/internal/plan"
	"github.com/fbkclanna/odometer/internal/selector"
	"github.com/fbkclanna/odometer/internal/testutil"
	"github.com/fbkclanna/odometer/internal/version"
	"github.com/fbkclanna/odometer/internal/workspace"
)

func setupCargo(t *testing.T, extra map[string]string) string {
	t.Helper()
	files := map[string]string{
		"Cargo.toml":          testutil.CargoRoot("1.0.0", "crates/*"),
		"crates/a/Cargo.toml": testutil.Crate("a", "1.0.0"),
		"crates/b/Cargo.toml": "# keep me\n" + testutil.Crate("b", "1.0.0"),
		"crates/c/Cargo.toml": testutil.Crate("c", "workspace"),
	}
	for k, v := range extra {
		files[k] = v
	}
	return testutil.WriteTree(t, files)
}

func buildPlan(t *testing.T, dir string, scope selector.Scope, op plan.Operation) *plan.Plan {
	t.Helper()
	w, err := workspace.Resolve(dir, workspace.Options{})
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	sel, err := selector.Select(w, scope, selector.RootWhenVersioned)
	if err != nil {
		t.Fatalf("Select error = %v", err)
	}
	p, err := plan.Build(w, sel, op)
	if err != nil {
		t.Fatalf("Build error = %v", err)
	}
	return p
}

func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path) //nolint:gosec // test file
		if err != nil {
			return err
		}
		out[path] = string(data)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func assertUnchanged(t *testing.T, dir string, before map[string]string) {
	t.Helper()
	after := snapshot(t, dir)
	if len(after) != len(before) {
		t.Errorf("file count changed: %d -> %d", len(before), len(after))
	}
	for path, data := range before {
		if after[path] != data {
			t.Errorf("%s was modified", path)
		}
	}
}

func TestApply_sync(t *testing.T) {
	dir := setupCargo(t, nil)
	p := buildPlan(t, dir, selector.All(), plan.SyncOp(version.MustParse("2.0.0")))

	var w Writer
	r, err := w.Apply(p)
	if err != nil {
		t.Fatalf("Apply error = %v", err)
	}
	if len(r.Written) != 4 {
		t.Errorf("written = %d, want 4", len(r.Written))
	}

	b := testutil.ReadFile(t, dir, "crates/b/Cargo.toml")
	if !strings.HasPrefix(b, "# keep me\n") {
		t.Errorf("comment lost:\n%s", b)
	}
	if !strings.Contains(b, `version = "2.0.0"`) {
		t.Errorf("crates/b not updated:\n%s", b)
	}
	c := testutil.ReadFile(t, dir, "crates/c/Cargo.toml")
	if !strings.Contains(c, `version = "2.0.0"`) || strings.Contains(c, "workspace = true") {
		t.Errorf("inherited member should become explicit:\n%s", c)
	}

	ws, err := workspace.Resolve(dir, workspace.Options{})
	if err != nil {
		t.Fatal(err)
	}
	for _, pkg := range ws.Packages {
		if pkg.Field.Kind != manifest.Explicit || pkg.Field.Version.String() != "2.0.0" {
			t.Errorf("%s = %s, want 2.0.0", pkg.Name, pkg.Field)
		}
	}
}

func TestApply_skipsUnchanged(t *testing.T) {
	dir := setupCargo(t, nil)
	p := buildPlan(t, dir, selector.Packages("a", "b"), plan.SetOp(version.MustParse("1.0.0")))

	var w Writer
	r, err := w.Apply(p)
	if err != nil {
		t.Fatalf("Apply error = %v", err)
	}
	if len(r.Written) != 0 || len(r.Unchanged) != 2 {
		t.Errorf("written = %v unchanged = %v, want none written", r.Written, r.Unchanged)
	}
}

func TestApply_conflict(t *testing.T) {
	dir := setupCargo(t, nil)
	p := buildPlan(t, dir, selector.All(), plan.RollOp(version.Patch, 1))

	testutil.AddFiles(t, dir, map[string]string{"crates/b/Cargo.toml": testutil.Crate("b", "1.0.5")})
	before := snapshot(t, dir)

	var w Writer
	_, err := w.Apply(p)
	var ce *ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want *ConflictError", err)
	}
	if !strings.HasSuffix(ce.Path, filepath.Join("crates", "b", "Cargo.toml")) {
		t.Errorf("Path = %q", ce.Path)
	}
	assertUnchanged(t, dir, before)
}

func TestApply_serializationErrorWritesNothing(t *testing.T) {
	dir := setupCargo(t, map[string]string{
		"crates/d/Cargo.toml": "[package]\nname = \"d\"\n\n[package.version]\nworkspace = true\n",
	})
	p := buildPlan(t, dir, selector.All(), plan.SetOp(version.MustParse("3.0.0")))
	before := snapshot(t, dir)

	var w Writer
	_, err := w.Apply(p)
	var se *manifest.SerializationError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *manifest.SerializationError", err)
	}
	assertUnchanged(t, dir, before)
}

func TestApply_partialCommit(t *testing.T) {
	dir := setupCargo(t, nil)
	p := buildPlan(t, dir, selector.All(), plan.SyncOp(version.MustParse("2.0.0")))
	journalPath := filepath.Join(dir, journal.DefaultFile)

	calls := 0
	w := Writer{
		Journal:     journalPath,
		ToolVersion: "test",
		writeFile: func(path string, data []byte, perm os.FileMode) error {
			calls++
			if calls == 2 {
				return errors.New("disk full")
			}
			return atomicWriteFile(path, data, perm)
		},
	}
	r, err := w.Apply(p)
	var pc *PartialCommitError
	if !errors.As(err, &pc) {
		t.Fatalf("error = %v, want *PartialCommitError", err)
	}
	if !IsPartialCommit(err) {
		t.Error("IsPartialCommit = false")
	}
	if len(pc.Committed) != 1 || len(pc.Pending) != 2 {
		t.Errorf("committed = %v pending = %v, want 1 and 2", pc.Committed, pc.Pending)
	}
	if len(r.Written) != 1 {
		t.Errorf("report written = %v, want 1 file", r.Written)
	}
	if pc.Journal != journalPath {
		t.Errorf("Journal = %q, want %q", pc.Journal, journalPath)
	}

	jf, err := journal.Load(journalPath)
	if err != nil {
		t.Fatalf("journal load: %v", err)
	}
	if jf.Count(journal.Committed) != 1 || jf.Count(journal.Failed) != 1 || jf.Count(journal.Pending) != 2 {
		t.Errorf("journal states = %+v", jf.Files)
	}
	if jf.Operation != "sync 2.0.0" {
		t.Errorf("journal operation = %q", jf.Operation)
	}
}

func TestApply_readOnlyFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	dir := setupCargo(t, nil)
	p := buildPlan(t, dir, selector.All(), plan.RollOp(version.Minor, 1))
	target := filepath.Join(dir, "crates", "b", "Cargo.toml")
	if err := os.Chmod(target, 0o444); err != nil {
		t.Fatal(err)
	}
	before := snapshot(t, dir)

	var w Writer
	if _, err := w.Apply(p); err == nil {
		t.Fatal("expected error for read-only manifest")
	}
	assertUnchanged(t, dir, before)
}

func TestDryRun(t *testing.T) {
	dir := setupCargo(t, nil)
	p := buildPlan(t, dir, selector.Packages("a"), plan.RollOp(version.Major, 1))
	before := snapshot(t, dir)

	var w Writer
	r, err := w.DryRun(p)
	if err != nil {
		t.Fatalf("DryRun error = %v", err)
	}
	if !r.DryRun || len(r.Changes) != 1 || r.Changes[0].To.String() != "2.0.0" {
		t.Errorf("report = %+v", r)
	}
	assertUnchanged(t, dir, before)
}

func TestAtomicWriteFile_preservesMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "package.json")
	if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := atomicWriteFile(path, []byte(`{"version": "1.0.0"}`), 0o600); err != nil {
		t.Fatalf("atomicWriteFile error = %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", fi.Mode().Perm())
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %d entries", len(entries))
	}
}
