package plan

import (
	"errors"
	"fmt"

	"github.com/fbkclanna/odometer/internal/manifest"
	"github.com/fbkclanna/odometer/internal/selector"
	"github.com/fbkclanna/odometer/internal/version"
	"github.com/fbkclanna/odometer/internal/workspace"
)

// Kind names a mutation.
type Kind string

const (
	Roll    Kind = "roll"
	Set     Kind = "set"
	Sync    Kind = "sync"
	Inherit Kind = "inherit"
)

// Operation is a requested mutation.
type Operation struct {
	Kind      Kind
	Component version.Component // Roll
	Amount    int               // Roll
	Target    version.Version   // Set, Sync
}

// RollOp rolls component c by amount.
func RollOp(c version.Component, amount int) Operation {
	return Operation{Kind: Roll, Component: c, Amount: amount}
}

// SetOp assigns v to every selected package.
func SetOp(v version.Version) Operation { return Operation{Kind: Set, Target: v} }

// SyncOp assigns v to the whole workspace.
func SyncOp(v version.Version) Operation { return Operation{Kind: Sync, Target: v} }

// InheritOp makes every selected package inherit the root version.
func InheritOp() Operation { return Operation{Kind: Inherit} }

func (o Operation) String() string {
	switch o.Kind {
	case Roll:
		return fmt.Sprintf("roll %s %+d", o.Component, o.Amount)
	case Set, Sync:
		return fmt.Sprintf("%s %s", o.Kind, o.Target)
	default:
		return string(o.Kind)
	}
}

// Entry is the planned change for one package.
type Entry struct {
	Package *workspace.Package
	From    manifest.VersionField
	To      manifest.VersionField
	// Effective is the version the package resolves to once the plan is applied.
	Effective version.Version
}

// Changed reports whether applying the entry rewrites the manifest.
func (e Entry) Changed() bool {
	return !e.From.Same(e.To)
}

// Plan maps each selected package to its new version field, in selection order.
type Plan struct {
	Operation Operation
	Entries   []Entry
}

// Changes returns the entries that rewrite a manifest.
func (p *Plan) Changes() []Entry {
	var out []Entry
	for _, e := range p.Entries {
		if e.Changed() {
			out = append(out, e)
		}
	}
	return out
}

// Build computes the plan for op over sel. It fails without a partial plan if
// any package cannot be planned.
//
// When a roll selects the root together with members that inherit from it,
// those members keep their inheritance marker and follow the root. Under a
// whole-workspace scope an inherit request leaves the root unchanged.
func Build(w *workspace.Workspace, sel *selector.Selection, op Operation) (*Plan, error) {
	if op.Kind == Sync && !sel.Scope.Workspace() {
		return nil, ErrSyncScope
	}

	pl := &planner{w: w, sel: sel, op: op}
	if op.Kind == Roll {
		pl.rolledRoot = rolledRoot(w, sel, op)
	}

	p := &Plan{Operation: op}
	seen := make(map[string]bool, len(sel.Packages))
	for _, pkg := range sel.Packages {
		if seen[pkg.Name] {
			return nil, fmt.Errorf("package %s selected twice", pkg.Name)
		}
		seen[pkg.Name] = true

		e, err := pl.entry(pkg)
		if err != nil {
			return nil, err
		}
		p.Entries = append(p.Entries, e)
	}
	return p, nil
}

// rolledRoot returns the root's new version when the root is part of the roll
// and carries an explicit version.
func rolledRoot(w *workspace.Workspace, sel *selector.Selection, op Operation) *version.Version {
	root := w.RootPackage()
	if w.Single || root.Field.Kind != manifest.Explicit || !sel.Contains(root.Name) {
		return nil
	}
	next, err := root.Field.Version.Roll(op.Component, op.Amount)
	if err != nil {
		// The root's own entry reports the failure.
		return nil
	}
	return &next
}

type planner struct {
	w          *workspace.Workspace
	sel        *selector.Selection
	op         Operation
	rolledRoot *version.Version
}

func (pl *planner) entry(pkg *workspace.Package) (Entry, error) {
	w, op := pl.w, pl.op
	e := Entry{Package: pkg, From: pkg.Field}
	switch op.Kind {
	case Roll:
		if pkg.Field.Kind == manifest.Inherited && pl.rolledRoot != nil {
			e.To, e.Effective = pkg.Field, *pl.rolledRoot
			return e, nil
		}
		cur, err := Effective(w, pkg)
		if err != nil {
			return Entry{}, err
		}
		next, err := cur.Roll(op.Component, op.Amount)
		if err != nil {
			var ne *version.NegativeError
			if errors.As(err, &ne) {
				return Entry{}, &NegativeVersionError{
					Package:   pkg.Name,
					From:      cur,
					Component: ne.Component,
					Amount:    ne.Amount,
					Attempted: ne.Attempted,
				}
			}
			return Entry{}, fmt.Errorf("package %s: %w", pkg.Name, err)
		}
		e.To, e.Effective = manifest.ExplicitField(next), next
	case Set, Sync:
		e.To, e.Effective = manifest.ExplicitField(op.Target), op.Target
	case Inherit:
		root := w.RootPackage()
		if pkg.Root {
			if pl.sel.Scope.Workspace() && !w.Single && pkg.Field.Kind == manifest.Explicit {
				e.To, e.Effective = pkg.Field, pkg.Field.Version
				return e, nil
			}
			return Entry{}, fmt.Errorf("package %s is the workspace root and cannot inherit its own version", pkg.Name)
		}
		if root.Field.Kind != manifest.Explicit {
			return Entry{}, &UnresolvableInheritanceError{Root: root.Name, Package: pkg.Name, RootField: root.Field}
		}
		if msg := inheritWarning(w); msg != "" {
			return Entry{}, fmt.Errorf("package %s cannot inherit: %s", pkg.Name, msg)
		}
		e.To, e.Effective = manifest.InheritedField(), root.Field.Version
	default:
		return Entry{}, fmt.Errorf("unknown operation: %q", op.Kind)
	}
	return e, nil
}

// Effective resolves a package's current version, following inheritance to
// the workspace root.
func Effective(w *workspace.Workspace, pkg *workspace.Package) (version.Version, error) {
	switch pkg.Field.Kind {
	case manifest.Explicit:
		return pkg.Field.Version, nil
	case manifest.Inherited:
		root := w.RootPackage()
		if pkg.Root || root.Field.Kind != manifest.Explicit {
			return version.Version{}, &UnresolvableInheritanceError{Root: root.Name, Package: pkg.Name, RootField: root.Field}
		}
		return root.Field.Version, nil
	default:
		return version.Version{}, &MalformedVersionError{Package: pkg.Name, Path: pkg.Manifest, Field: pkg.Field}
	}
}
