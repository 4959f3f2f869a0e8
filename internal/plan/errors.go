package plan

import (
	"errors"
	"fmt"

	"github.com/fbkclanna/odometer/internal/manifest"
	"github.com/fbkclanna/odometer/internal/version"
)

// ErrSyncScope is returned when sync is requested for less than the whole workspace.
var ErrSyncScope = errors.New("sync aligns the whole workspace; use set to change individual packages")

// UnresolvableInheritanceError reports an inherited version whose root has no
// explicit version to inherit.
type UnresolvableInheritanceError struct {
	Root      string
	Package   string
	RootField manifest.VersionField
}

func (e *UnresolvableInheritanceError) Error() string {
	return fmt.Sprintf("package %s inherits its version from workspace root %s, which has %s",
		e.Package, e.Root, e.RootField)
}

// NegativeVersionError reports a roll that drives a component below zero.
type NegativeVersionError struct {
	Package   string
	From      version.Version
	Component version.Component
	Amount    int
	Attempted int
}

func (e *NegativeVersionError) Error() string {
	return fmt.Sprintf("package %s: cannot roll %s version by %d from %s (result %d is negative)",
		e.Package, e.Component, e.Amount, e.From, e.Attempted)
}

// MalformedVersionError reports a missing or malformed field where a current
// version is required.
type MalformedVersionError struct {
	Package string
	Path    string
	Field   manifest.VersionField
}

func (e *MalformedVersionError) Error() string {
	if e.Field.Kind == manifest.Missing {
		return fmt.Sprintf("package %s has no version field in %s", e.Package, e.Path)
	}
	return fmt.Sprintf("package %s has malformed version %q in %s", e.Package, e.Field.Raw, e.Path)
}
