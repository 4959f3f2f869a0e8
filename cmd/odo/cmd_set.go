package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fbkclanna/odometer/internal/plan"
	"github.com/fbkclanna/odometer/internal/selector"
	"github.com/fbkclanna/odometer/internal/version"
)

func newSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set [version]",
		Short: "Set selected packages to a version",
		Long: `Write an explicit version to each selected package. Packages that
inherit the workspace version get an explicit value instead.

With --inherit, selected members are switched to inherit the workspace
root's version. With --interactive and no version, odo prompts for one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runSet,
	}
	addSelectionFlags(cmd, true)
	addMutationFlags(cmd)
	cmd.Flags().Bool("inherit", false, "Make selected members inherit the workspace version")
	return cmd
}

// promptVersion is replaced in tests.
var promptVersion = func() (string, error) {
	return promptInput("New version", "1.0.0", validateVersion)
}

func setOperation(cmd *cobra.Command, args []string) (plan.Operation, error) {
	inherit, _ := cmd.Flags().GetBool("inherit")
	interactive, _ := cmd.Flags().GetBool("interactive")

	switch {
	case inherit && len(args) > 0:
		return plan.Operation{}, errors.New("--inherit does not take a version")
	case inherit:
		return plan.InheritOp(), nil
	}

	var raw string
	switch {
	case len(args) > 0:
		raw = args[0]
	case interactive:
		if err := requireTTY("prompting for a version"); err != nil {
			return plan.Operation{}, err
		}
		s, err := promptVersion()
		if err != nil {
			return plan.Operation{}, err
		}
		raw = s
	default:
		return plan.Operation{}, errors.New("missing version argument (or use --inherit)")
	}

	v, err := version.Parse(raw)
	if err != nil {
		return plan.Operation{}, err
	}
	return plan.SetOp(v), nil
}

func runSet(cmd *cobra.Command, args []string) error {
	scope, err := scopeFromFlags(cmd, selector.Root())
	if err != nil {
		return err
	}
	op, err := setOperation(cmd, args)
	if err != nil {
		return err
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	req := a.request(cmd)
	req.Scope = scope
	req.Operation = op
	return runMutation(cmd, a, req)
}
