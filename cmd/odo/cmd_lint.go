package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fbkclanna/odometer/internal/engine"
	"github.com/fbkclanna/odometer/internal/manifest"
	"github.com/fbkclanna/odometer/internal/selector"
)

func newLintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check that every package has a usable version",
		Long: `Report each selected package's version status. Exits non-zero when a
package has no version, a malformed one, or inherits from a root without
a version. Never writes.`,
		Args: cobra.NoArgs,
		RunE: runLint,
	}
	addSelectionFlags(cmd, true)
	return cmd
}

func runLint(cmd *cobra.Command, _ []string) error {
	scope, err := scopeFromFlags(cmd, selector.All())
	if err != nil {
		return err
	}
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	req := a.request(cmd)
	req.Scope = scope

	in, lintErr := a.engine.Lint(req)
	var le *engine.LintError
	if lintErr != nil && !errors.As(lintErr, &le) {
		return lintErr
	}

	out := cmd.OutOrStdout()
	if err := printPackages(out, a.cfg.Format, in.Workspace, in.Report); err != nil {
		return err
	}
	if a.cfg.Format == "simple" {
		r := in.Report
		_, _ = fmt.Fprintf(out, "\n%d explicit, %d inherited, %d missing, %d malformed\n",
			r.Count(manifest.Explicit), r.Count(manifest.Inherited),
			r.Count(manifest.Missing), r.Count(manifest.Malformed))
		if n := len(r.Warnings()); n > 0 {
			_, _ = fmt.Fprintf(out, "%d warning(s)\n", n)
		}
	}
	return lintErr
}
