package main

import (
	"github.com/spf13/cobra"

	"github.com/fbkclanna/odometer/internal/selector"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "List package versions",
		Args:  cobra.NoArgs,
		RunE:  runShow,
	}
	addSelectionFlags(cmd, true)
	return cmd
}

func runShow(cmd *cobra.Command, _ []string) error {
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

	in, err := a.engine.Show(req)
	if err != nil {
		return err
	}
	return printPackages(cmd.OutOrStdout(), a.cfg.Format, in.Workspace, in.Report)
}
