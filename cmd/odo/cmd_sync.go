package main

import (
	"github.com/spf13/cobra"

	"github.com/fbkclanna/odometer/internal/plan"
	"github.com/fbkclanna/odometer/internal/selector"
	"github.com/fbkclanna/odometer/internal/version"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <version>",
		Short: "Set every workspace package to the same version",
		Long: `Align the whole workspace on one explicit version. Members that inherit
the workspace version are given the explicit value.`,
		Args: cobra.ExactArgs(1),
		RunE: runSync,
	}
	addSelectionFlags(cmd, false)
	addMutationFlags(cmd)
	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	v, err := version.Parse(args[0])
	if err != nil {
		return err
	}
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
	req.Operation = plan.SyncOp(v)
	return runMutation(cmd, a, req)
}
