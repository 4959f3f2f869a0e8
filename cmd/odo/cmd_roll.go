package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fbkclanna/odometer/internal/plan"
	"github.com/fbkclanna/odometer/internal/selector"
	"github.com/fbkclanna/odometer/internal/version"
)

func newRollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roll <major|minor|patch> [amount]",
		Short: "Increment one version component",
		Long: `Increment (or, with a negative amount, decrement) one component of each
selected package's version. Lower-order components are reset to zero and
pre-release and build metadata are cleared.

Negative amounts must follow "--", e.g. "odo roll patch -- -1".`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runRoll,
	}
	addSelectionFlags(cmd, true)
	addMutationFlags(cmd)
	return cmd
}

func parseAmount(args []string) (int, error) {
	if len(args) < 2 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: must be an integer", args[1])
	}
	if n == 0 {
		return 0, errors.New("amount must not be zero")
	}
	return n, nil
}

func runRoll(cmd *cobra.Command, args []string) error {
	c, err := version.ParseComponent(args[0])
	if err != nil {
		return err
	}
	amount, err := parseAmount(args)
	if err != nil {
		return err
	}
	scope, err := scopeFromFlags(cmd, selector.Root())
	if err != nil {
		return err
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	req := a.request(cmd)
	req.Scope = scope
	req.Operation = plan.RollOp(c, amount)
	return runMutation(cmd, a, req)
}
