package workspace

import (
	"errors"
	"fmt"
)

// ErrNoWorkspaceFound is returned by FindRoot when no ancestor manifest
// declares a workspace. Resolve falls back to single-package mode on it.
var ErrNoWorkspaceFound = errors.New("no workspace found")

// ErrNoManifest means no manifest of a known dialect exists at or above the
// starting directory.
var ErrNoManifest = errors.New("no manifest found")

// MemberNotFoundError reports a literal member path that does not resolve to
// a package directory.
type MemberNotFoundError struct {
	Pattern string
	Path    string
	Reason  string
}

func (e *MemberNotFoundError) Error() string {
	return fmt.Sprintf("workspace member %q not found at %s: %s", e.Pattern, e.Path, e.Reason)
}

// DuplicatePackageError reports two packages sharing one name.
type DuplicatePackageError struct {
	Name   string
	First  string
	Second string
}

func (e *DuplicatePackageError) Error() string {
	return fmt.Sprintf("duplicate package name %q: %s and %s", e.Name, e.First, e.Second)
}
