package plan

import (
	"fmt"

	"github.com/fbkclanna/odometer/internal/manifest"
	"github.com/fbkclanna/odometer/internal/selector"
	"github.com/fbkclanna/odometer/internal/version"
	"github.com/fbkclanna/odometer/internal/workspace"
)

// Finding is the inspected state of one package's version field.
type Finding struct {
	Package *workspace.Package
	Status  manifest.Kind
	// Effective is set when the field resolves to a version.
	Effective *version.Version
	// Problem describes why the field needs attention; empty when valid.
	Problem string
	// Warning flags a valid field that other tools may still reject.
	Warning string
}

// OK reports whether the field is a valid explicit or resolvable inherited version.
func (f Finding) OK() bool {
	return f.Problem == ""
}

// LintReport lists findings in selection order.
type LintReport struct {
	Findings []Finding
}

// Count returns how many findings have status k.
func (r *LintReport) Count(k manifest.Kind) int {
	n := 0
	for _, f := range r.Findings {
		if f.Status == k {
			n++
		}
	}
	return n
}

// Warnings returns the valid findings that carry a warning.
func (r *LintReport) Warnings() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.OK() && f.Warning != "" {
			out = append(out, f)
		}
	}
	return out
}

// Problems returns the findings that need attention.
func (r *LintReport) Problems() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if !f.OK() {
			out = append(out, f)
		}
	}
	return out
}

// Lint inspects the version field of every selected package. It never writes.
func Lint(w *workspace.Workspace, sel *selector.Selection) *LintReport {
	r := &LintReport{Findings: make([]Finding, 0, len(sel.Packages))}
	for _, pkg := range sel.Packages {
		f := Finding{Package: pkg, Status: pkg.Field.Kind}
		v, err := Effective(w, pkg)
		if err != nil {
			f.Problem = err.Error()
		} else {
			f.Effective = &v
			if pkg.Field.Kind == manifest.Inherited {
				f.Warning = inheritWarning(w)
			}
		}
		r.Findings = append(r.Findings, f)
	}
	return r
}

// inheritWarning flags members inheriting from a root whose version is not
// shared with them.
func inheritWarning(w *workspace.Workspace) string {
	root := w.RootPackage()
	if root.Doc == nil || root.Doc.Workspace == nil || !root.Doc.Workspace.OwnVersionOnly {
		return ""
	}
	return fmt.Sprintf("root %s has no shared workspace version; the version is read from its own package", root.Name)
}
