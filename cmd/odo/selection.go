package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/fbkclanna/odometer/internal/selector"
)

func addSelectionFlags(cmd *cobra.Command, named bool) {
	if named {
		cmd.Flags().StringArrayP("package", "p", nil, "Select a package by name (repeatable)")
		cmd.Flags().BoolP("workspace", "w", false, "Select every workspace package")
		cmd.Flags().Bool("all", false, "Alias for --workspace")
	}
	cmd.Flags().StringArray("exclude", nil, "Leave a package out of a workspace selection (repeatable)")
}

// scopeFromFlags turns selection flags into a scope. def applies when no
// selection flag is given.
func scopeFromFlags(cmd *cobra.Command, def selector.Scope) (selector.Scope, error) {
	flags := cmd.Flags()
	var names []string
	var whole bool
	if flags.Lookup("package") != nil {
		names, _ = flags.GetStringArray("package")
		ws, _ := flags.GetBool("workspace")
		all, _ := flags.GetBool("all")
		whole = ws || all
	}
	exclude, _ := flags.GetStringArray("exclude")

	switch {
	case len(names) > 0 && whole:
		return selector.Scope{}, errors.New("--package cannot be combined with --workspace")
	case len(names) > 0 && len(exclude) > 0:
		return selector.Scope{}, errors.New("--exclude applies to workspace selections, not --package")
	case len(names) > 0:
		return selector.Packages(names...), nil
	case whole || len(exclude) > 0:
		if !whole && !def.Workspace() {
			return selector.Scope{}, errors.New("--exclude requires --workspace")
		}
		return selector.AllExcept(exclude...), nil
	default:
		return def, nil
	}
}
