package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fbkclanna/odometer/internal/engine"
	"github.com/fbkclanna/odometer/internal/ui"
)

func addMutationFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "Print the planned changes without writing")
	cmd.Flags().BoolP("interactive", "i", false, "Show the planned changes and ask before writing")
}

// confirm is replaced in tests.
var confirm = promptConfirm

// runMutation plans req, optionally asks for confirmation, commits, and
// prints the report.
func runMutation(cmd *cobra.Command, a *app, req engine.Request) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	interactive, _ := cmd.Flags().GetBool("interactive")
	out := cmd.OutOrStdout()
	req.DryRun = dryRun

	if interactive && !dryRun {
		if err := requireTTY("--interactive"); err != nil {
			return err
		}
	}

	p, err := a.engine.Prepare(req)
	if err != nil {
		return err
	}
	changes := len(p.Plan.Changes())

	if interactive && !dryRun {
		preview := *p
		preview.DryRun = true
		r, err := a.engine.Commit(&preview)
		if err != nil {
			return err
		}
		printChanges(out, toReportOut(p.Workspace, r))
		if changes == 0 {
			_, _ = fmt.Fprintln(out, "Nothing to change")
			return nil
		}
		ok, err := confirm(fmt.Sprintf("Apply %d change(s)?", changes))
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(out, "Aborted; no files written")
			return nil
		}
	}

	if a.verbose && !dryRun && changes > 0 {
		a.engine.Progress = ui.NewProgress(cmd.ErrOrStderr(), changes, "wrote")
	}
	r, err := a.engine.Commit(p)
	if err != nil {
		return err
	}
	if interactive && !dryRun && a.cfg.Format == "simple" {
		_, _ = fmt.Fprintf(out, "Updated %d manifest(s)\n", len(r.Written))
		return nil
	}
	return printReport(out, a.cfg.Format, p.Workspace, r)
}
