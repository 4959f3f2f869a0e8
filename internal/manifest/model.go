package manifest

import (
	"fmt"

	"github.com/fbkclanna/odometer/internal/version"
)

// Dialect identifies a manifest file format.
type Dialect string

const (
	TOML Dialect = "toml"
	JSON Dialect = "json"
)

// Kind classifies the state of a version field.
type Kind int

const (
	Missing Kind = iota
	Explicit
	Inherited
	Malformed
)

func (k Kind) String() string {
	switch k {
	case Explicit:
		return "explicit"
	case Inherited:
		return "inherited"
	case Malformed:
		return "malformed"
	default:
		return "missing"
	}
}

// VersionField is the version-bearing field of a manifest.
// Version is set only for Explicit; Raw only for Malformed.
type VersionField struct {
	Kind    Kind
	Version version.Version
	Raw     string
}

// ExplicitField returns an Explicit field holding v.
func ExplicitField(v version.Version) VersionField {
	return VersionField{Kind: Explicit, Version: v}
}

// InheritedField returns an Inherited field.
func InheritedField() VersionField {
	return VersionField{Kind: Inherited}
}

// MissingField returns a Missing field.
func MissingField() VersionField {
	return VersionField{Kind: Missing}
}

// MalformedField returns a Malformed field carrying the raw source text.
func MalformedField(raw string) VersionField {
	return VersionField{Kind: Malformed, Raw: raw}
}

func (f VersionField) String() string {
	switch f.Kind {
	case Explicit:
		return f.Version.String()
	case Inherited:
		return "(inherited)"
	case Malformed:
		return fmt.Sprintf("(malformed: %q)", f.Raw)
	default:
		return "(missing)"
	}
}

// Same reports whether f and o would serialize identically.
func (f VersionField) Same(o VersionField) bool {
	if f.Kind != o.Kind {
		return false
	}
	switch f.Kind {
	case Explicit:
		return f.Version.Identical(o.Version)
	case Malformed:
		return f.Raw == o.Raw
	default:
		return true
	}
}

// Members is a workspace member declaration read from a root manifest.
type Members struct {
	Patterns []string
	Exclude  []string
	// Source is the file the patterns were read from.
	Source string
	// OwnVersionOnly is set when the root's version belongs to the root
	// package alone and members cannot inherit it, as with a Cargo root that
	// has [package].version but no [workspace.package].version.
	OwnVersionOnly bool
}

// Document is a manifest read from disk together with its exact bytes.
type Document struct {
	Path    string
	Dialect Dialect
	Name    string
	Field   VersionField
	// Workspace is non-nil when the manifest declares a workspace.
	Workspace *Members
	Data      []byte
	Sum       [32]byte

	// HasName reports whether Name came from the manifest rather than the directory.
	HasName bool

	tomlKey []string
	span    *fieldSpan
}
