package txn

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fbkclanna/odometer/internal/journal"
	"github.com/fbkclanna/odometer/internal/manifest"
	"github.com/fbkclanna/odometer/internal/plan"
)

// Progress receives one call per flushed file.
type Progress interface {
	Done(label string)
}

// Writer applies plans to disk.
type Writer struct {
	Logger   *log.Logger
	Progress Progress
	// Journal is where a recovery journal is written after a partial
	// commit. Empty disables it.
	Journal     string
	ToolVersion string

	// writeFile replaces atomicWriteFile in tests.
	writeFile func(path string, data []byte, perm os.FileMode) error
}

// Change is one manifest rewrite.
type Change struct {
	Package string
	Path    string
	From    manifest.VersionField
	To      manifest.VersionField
}

// Report describes an applied (or, with DryRun, planned) commit.
type Report struct {
	Operation plan.Operation
	Changes   []Change
	// Unchanged lists selected packages whose field already matched.
	Unchanged []string
	Written   []string
	DryRun    bool
}

// Staged is a verified in-memory edit ready to flush.
type Staged struct {
	Entry plan.Entry
	Path  string
	Data  []byte
	Mode  os.FileMode
}

func (w *Writer) logger() *log.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return log.New(io.Discard)
}

// Stage renders every changed entry and verifies it reads back as intended.
// Nothing is written.
func (w *Writer) Stage(p *plan.Plan) ([]Staged, error) {
	var staged []Staged
	for _, e := range p.Changes() {
		pkg := e.Package
		a, err := manifest.ForDialect(pkg.Dialect)
		if err != nil {
			return nil, err
		}
		if pkg.Doc == nil {
			return nil, &manifest.SerializationError{Path: pkg.Manifest, Reason: "manifest was not read"}
		}
		data, err := a.Write(pkg.Doc, e.To)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", pkg.Name, err)
		}
		staged = append(staged, Staged{Entry: e, Path: pkg.Manifest, Data: data})
	}
	return staged, nil
}

// Apply stages, verifies, and flushes p. When any staged edit or
// pre-commit check fails, no file is modified.
func (w *Writer) Apply(p *plan.Plan) (*Report, error) {
	staged, err := w.Stage(p)
	if err != nil {
		return nil, err
	}
	if err := w.verify(staged); err != nil {
		return nil, err
	}

	r := report(p, false)
	write := w.writeFile
	if write == nil {
		write = atomicWriteFile
	}

	for i, s := range staged {
		if err := write(s.Path, s.Data, s.Mode); err != nil {
			pc := &PartialCommitError{Committed: r.Written, Failed: s.Path, Err: err}
			for _, rest := range staged[i+1:] {
				pc.Pending = append(pc.Pending, rest.Path)
			}
			w.saveJournal(p, staged, i, pc)
			return r, pc
		}
		r.Written = append(r.Written, s.Path)
		w.logger().Info("updated manifest", "package", s.Entry.Package.Name, "path", s.Path, "version", s.Entry.To)
		if w.Progress != nil {
			w.Progress.Done(fmt.Sprintf("%s %s -> %s", s.Entry.Package.Name, s.Entry.From, s.Entry.To))
		}
	}
	return r, nil
}

// DryRun reports what Apply would change after staging every edit.
func (w *Writer) DryRun(p *plan.Plan) (*Report, error) {
	if _, err := w.Stage(p); err != nil {
		return nil, err
	}
	return report(p, true), nil
}

// verify re-reads every target file and fails if it changed since it was
// read or cannot be replaced.
func (w *Writer) verify(staged []Staged) error {
	for i := range staged {
		s := &staged[i]
		fi, err := os.Stat(s.Path)
		if err != nil {
			return fmt.Errorf("checking %s: %w", s.Path, err)
		}
		s.Mode = fi.Mode().Perm()

		data, err := os.ReadFile(s.Path) //nolint:gosec // path is a discovered manifest
		if err != nil {
			return fmt.Errorf("re-reading %s: %w", s.Path, err)
		}
		if manifest.Fingerprint(data) != s.Entry.Package.Doc.Sum {
			return &ConflictError{Path: s.Path}
		}

		f, err := os.OpenFile(s.Path, os.O_WRONLY, 0)
		if err != nil {
			return fmt.Errorf("%s is not writable: %w", s.Path, err)
		}
		_ = f.Close()

		tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".odo-check-*")
		if err != nil {
			return fmt.Errorf("directory of %s is not writable: %w", s.Path, err)
		}
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}
	w.logger().Debug("verified staged edits", "files", len(staged))
	return nil
}

func (w *Writer) saveJournal(p *plan.Plan, staged []Staged, failed int, pc *PartialCommitError) {
	if w.Journal == "" {
		return
	}
	f := &journal.File{
		Version:     1,
		GeneratedAt: time.Now().Format(time.RFC3339),
		ToolVersion: w.ToolVersion,
		Operation:   p.Operation.String(),
		Error:       pc.Err.Error(),
	}
	for i, s := range staged {
		state := journal.Committed
		switch {
		case i == failed:
			state = journal.Failed
		case i > failed:
			state = journal.Pending
		}
		f.Files = append(f.Files, journal.Entry{
			Package: s.Entry.Package.Name,
			Path:    s.Path,
			From:    s.Entry.From.String(),
			To:      s.Entry.To.String(),
			State:   state,
		})
	}
	if err := journal.Save(w.Journal, f); err != nil {
		w.logger().Error("could not write recovery journal", "path", w.Journal, "err", err)
		return
	}
	pc.Journal = w.Journal
}

func report(p *plan.Plan, dryRun bool) *Report {
	r := &Report{Operation: p.Operation, DryRun: dryRun}
	for _, e := range p.Entries {
		if !e.Changed() {
			r.Unchanged = append(r.Unchanged, e.Package.Name)
			continue
		}
		r.Changes = append(r.Changes, Change{
			Package: e.Package.Name,
			Path:    e.Package.Manifest,
			From:    e.From,
			To:      e.To,
		})
	}
	return r
}

// atomicWriteFile replaces path through a temporary file in the same directory.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if perm != 0 {
		if err := os.Chmod(tmpPath, perm); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("failed to set permissions on temporary file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Best-effort cleanup
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}
	return nil
}

// IsPartialCommit reports whether err is a partial commit.
func IsPartialCommit(err error) bool {
	var pc *PartialCommitError
	return errors.As(err, &pc)
}
