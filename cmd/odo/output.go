package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fbkclanna/odometer/internal/manifest"
	"github.com/fbkclanna/odometer/internal/plan"
	"github.com/fbkclanna/odometer/internal/txn"
	"github.com/fbkclanna/odometer/internal/ui"
	"github.com/fbkclanna/odometer/internal/workspace"
)

type changeOut struct {
	Package string `json:"package" yaml:"package"`
	Path    string `json:"path" yaml:"path"`
	From    string `json:"from" yaml:"from"`
	To      string `json:"to" yaml:"to"`
}

type reportOut struct {
	Operation string      `json:"operation" yaml:"operation"`
	DryRun    bool        `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	Changes   []changeOut `json:"changes" yaml:"changes"`
	Unchanged []string    `json:"unchanged,omitempty" yaml:"unchanged,omitempty"`
}

type packageOut struct {
	Package string `json:"package" yaml:"package"`
	Path    string `json:"path" yaml:"path"`
	Status  string `json:"status" yaml:"status"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	Raw     string `json:"raw,omitempty" yaml:"raw,omitempty"`
	Problem string `json:"problem,omitempty" yaml:"problem,omitempty"`
	Warning string `json:"warning,omitempty" yaml:"warning,omitempty"`
}

func encode(out io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

func fieldText(f manifest.VersionField) string {
	if f.Kind == manifest.Explicit {
		return f.Version.String()
	}
	return f.Kind.String()
}

func toReportOut(w *workspace.Workspace, r *txn.Report) reportOut {
	ro := reportOut{
		Operation: r.Operation.String(),
		DryRun:    r.DryRun,
		Changes:   make([]changeOut, 0, len(r.Changes)),
		Unchanged: r.Unchanged,
	}
	for _, c := range r.Changes {
		ro.Changes = append(ro.Changes, changeOut{
			Package: c.Package,
			Path:    relPath(w.Root, c.Path),
			From:    fieldText(c.From),
			To:      fieldText(c.To),
		})
	}
	return ro
}

func printReport(out io.Writer, format string, w *workspace.Workspace, r *txn.Report) error {
	ro := toReportOut(w, r)
	if format != "simple" {
		return encode(out, format, ro)
	}
	printChanges(out, ro)
	switch {
	case r.DryRun:
		_, _ = fmt.Fprintf(out, "Dry run: %d manifest(s) would change\n", len(ro.Changes))
	case len(ro.Changes) == 0:
		_, _ = fmt.Fprintln(out, "Nothing to change")
	}
	return nil
}

func printChanges(out io.Writer, ro reportOut) {
	for _, c := range ro.Changes {
		_, _ = fmt.Fprintf(out, "%s %s -> %s\n", c.Package, c.From, ui.Paint(ui.Changed, c.To))
	}
	for _, name := range ro.Unchanged {
		_, _ = fmt.Fprintf(out, "%s %s\n", name, ui.Paint(ui.Unchanged, "unchanged"))
	}
}

func toPackagesOut(w *workspace.Workspace, r *plan.LintReport) []packageOut {
	out := make([]packageOut, 0, len(r.Findings))
	for _, f := range r.Findings {
		po := packageOut{
			Package: f.Package.Name,
			Path:    relPath(w.Root, f.Package.Manifest),
			Status:  f.Status.String(),
			Problem: f.Problem,
			Warning: f.Warning,
		}
		if f.Effective != nil {
			po.Version = f.Effective.String()
		}
		if f.Status == manifest.Malformed {
			po.Raw = f.Package.Field.Raw
		}
		out = append(out, po)
	}
	return out
}

func tone(p packageOut) ui.Tone {
	switch {
	case p.Problem != "":
		return ui.Problem
	case p.Status == manifest.Inherited.String():
		return ui.Inherited
	default:
		return ui.Plain
	}
}

func printPackages(out io.Writer, format string, w *workspace.Workspace, r *plan.LintReport) error {
	pkgs := toPackagesOut(w, r)
	if format != "simple" {
		return encode(out, format, pkgs)
	}
	tbl := ui.NewTable(out, "PACKAGE", "VERSION", "PATH", "STATUS")
	for _, p := range pkgs {
		v := p.Version
		if v == "" {
			v = "-"
		}
		status := p.Status
		switch {
		case p.Problem != "":
			status += ": " + p.Problem
		case p.Warning != "":
			status += " (warning: " + p.Warning + ")"
		}
		tbl.Row(p.Package, v, p.Path, ui.Paint(tone(p), status))
	}
	return tbl.Flush()
}
