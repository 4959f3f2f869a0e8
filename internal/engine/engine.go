package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/fbkclanna/odometer/internal/config"
	"github.com/fbkclanna/odometer/internal/git"
	"github.com/fbkclanna/odometer/internal/journal"
	"github.com/fbkclanna/odometer/internal/logging"
	"github.com/fbkclanna/odometer/internal/plan"
	"github.com/fbkclanna/odometer/internal/selector"
	"github.com/fbkclanna/odometer/internal/txn"
	"github.com/fbkclanna/odometer/internal/workspace"
)

// Request is a parsed command.
type Request struct {
	// Dir is where workspace discovery starts. Empty means ".".
	Dir       string
	Operation plan.Operation
	Scope     selector.Scope
	// IncludeIgnored overrides the configured ignore behaviour when true.
	IncludeIgnored bool
	DryRun         bool
}

// Engine executes requests against the filesystem. It keeps no state between
// calls.
type Engine struct {
	cfg    config.Config
	logger *log.Logger

	// Progress, when set, is told about every flushed file.
	Progress txn.Progress
	// ToolVersion is recorded in recovery journals.
	ToolVersion string
}

// New returns an engine using cfg. A nil logger discards output.
func New(cfg config.Config, logger *log.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Inspection is the read-only view returned by Show and Lint.
type Inspection struct {
	Workspace *workspace.Workspace
	Selection *selector.Selection
	Report    *plan.LintReport
}

// Prepared is a validated plan waiting to be committed.
type Prepared struct {
	Workspace *workspace.Workspace
	Selection *selector.Selection
	Plan      *plan.Plan
	DryRun    bool
}

// LintError is returned by Lint when any selected package needs attention.
type LintError struct {
	Problems int
}

func (e *LintError) Error() string {
	if e.Problems == 1 {
		return "1 package has a missing or invalid version"
	}
	return fmt.Sprintf("%d packages have a missing or invalid version", e.Problems)
}

func (e *Engine) resolve(req Request) (*workspace.Workspace, *selector.Selection, error) {
	dir := req.Dir
	if dir == "" {
		dir = "."
	}
	w, err := workspace.Resolve(dir, workspace.Options{
		IncludeIgnored: req.IncludeIgnored || e.cfg.IncludeIgnored,
		Exclude:        e.cfg.Exclude,
		Jobs:           e.cfg.Jobs,
		Logger:         e.logger,
	})
	if err != nil {
		return nil, nil, err
	}
	sel, err := selector.Select(w, req.Scope, e.cfg.Policy())
	if err != nil {
		return nil, nil, err
	}
	e.logger.Debug("selected packages", "scope", req.Scope.Kind, "packages", sel.Names())
	return w, sel, nil
}

// Show reports the effective version of every selected package.
func (e *Engine) Show(req Request) (*Inspection, error) {
	w, sel, err := e.resolve(req)
	if err != nil {
		return nil, err
	}
	return &Inspection{Workspace: w, Selection: sel, Report: plan.Lint(w, sel)}, nil
}

// Lint is Show plus a *LintError when any package is missing, malformed, or
// inherits from a root without a version. The inspection is returned either way.
func (e *Engine) Lint(req Request) (*Inspection, error) {
	in, err := e.Show(req)
	if err != nil {
		return nil, err
	}
	if n := len(in.Report.Problems()); n > 0 {
		return in, &LintError{Problems: n}
	}
	return in, nil
}

// Prepare resolves, selects, and plans req without touching any file.
func (e *Engine) Prepare(req Request) (*Prepared, error) {
	w, sel, err := e.resolve(req)
	if err != nil {
		return nil, err
	}
	p, err := plan.Build(w, sel, req.Operation)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("planned", "operation", p.Operation, "changes", len(p.Changes()), "selected", len(p.Entries))
	return &Prepared{Workspace: w, Selection: sel, Plan: p, DryRun: req.DryRun}, nil
}

// Commit writes a prepared plan, or only stages it for a dry run. Files
// changed on disk since Prepare read them abort the commit.
func (e *Engine) Commit(p *Prepared) (*txn.Report, error) {
	w := &txn.Writer{
		Logger:      e.logger,
		Progress:    e.Progress,
		Journal:     e.journalPath(p.Workspace),
		ToolVersion: e.ToolVersion,
	}
	e.warnLeftoverJournal(w.Journal)
	if p.DryRun {
		return w.DryRun(p.Plan)
	}
	if err := e.checkDirty(p); err != nil {
		return nil, err
	}
	return w.Apply(p.Plan)
}

// warnLeftoverJournal reports a recovery journal left by an earlier partial
// commit. The files it lists may still be out of step.
func (e *Engine) warnLeftoverJournal(path string) {
	if path == "" {
		return
	}
	f, err := journal.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		e.logger.Warn("could not read recovery journal", "path", path, "err", err)
		return
	}
	e.logger.Warn("an earlier partial commit left a recovery journal; reconcile the listed files and delete it",
		"path", path,
		"operation", f.Operation,
		"committed", f.Count(journal.Committed),
		"not_written", f.Count(journal.Failed)+f.Count(journal.Pending))
}

// DirtyError lists manifests with uncommitted changes when dirty_check is
// "error".
type DirtyError struct {
	Paths []string
}

func (e *DirtyError) Error() string {
	return fmt.Sprintf("refusing to rewrite manifests with uncommitted changes: %s (set dirty_check to warn or off to override)",
		strings.Join(e.Paths, ", "))
}

// checkDirty looks for uncommitted changes in the manifests about to be
// rewritten. Workspaces outside a git work tree are not checked.
func (e *Engine) checkDirty(p *Prepared) error {
	if e.cfg.DirtyCheck == "off" || !git.IsInstalled() {
		return nil
	}
	changes := p.Plan.Changes()
	if len(changes) == 0 {
		return nil
	}
	top, err := git.TopLevel(p.Workspace.Root)
	if err != nil {
		e.logger.Debug("skipping uncommitted change check", "err", err)
		return nil
	}
	top, err = filepath.EvalSymlinks(top)
	if err != nil {
		return nil
	}

	paths := make([]string, 0, len(changes))
	for _, c := range changes {
		path := c.Package.Manifest
		if resolved, err := filepath.EvalSymlinks(path); err == nil {
			path = resolved
		}
		paths = append(paths, path)
	}
	dirty, err := git.Modified(top, paths...)
	if err != nil {
		e.logger.Warn("could not check for uncommitted changes", "err", err)
		return nil
	}
	if len(dirty) == 0 {
		return nil
	}
	if e.cfg.DirtyCheck == "error" {
		return &DirtyError{Paths: dirty}
	}
	for _, d := range dirty {
		e.logger.Warn("manifest has uncommitted changes", "path", d)
	}
	return nil
}

// Mutate prepares and commits req.
func (e *Engine) Mutate(req Request) (*txn.Report, error) {
	p, err := e.Prepare(req)
	if err != nil {
		return nil, err
	}
	return e.Commit(p)
}

func (e *Engine) journalPath(w *workspace.Workspace) string {
	j := e.cfg.Journal
	if j == "" || filepath.IsAbs(j) {
		return j
	}
	return filepath.Join(w.Root, j)
}
