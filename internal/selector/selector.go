package selector

import (
	"fmt"
	"strings"

	"github.com/fbkclanna/odometer/internal/manifest"
	"github.com/fbkclanna/odometer/internal/workspace"
)

// Kind is the shape of a scope request.
type Kind int

const (
	RootOnly Kind = iota
	Named
	AllMembers
	AllMembersExcept
)

func (k Kind) String() string {
	switch k {
	case Named:
		return "named"
	case AllMembers:
		return "workspace"
	case AllMembersExcept:
		return "workspace-except"
	default:
		return "root"
	}
}

// Scope is a requested package scope. Names is used by Named and AllMembersExcept.
type Scope struct {
	Kind  Kind
	Names []string
}

// Root selects the workspace root package.
func Root() Scope { return Scope{Kind: RootOnly} }

// Packages selects the named packages.
func Packages(names ...string) Scope { return Scope{Kind: Named, Names: names} }

// All selects every workspace package.
func All() Scope { return Scope{Kind: AllMembers} }

// AllExcept selects every workspace package except the named ones.
func AllExcept(names ...string) Scope {
	if len(names) == 0 {
		return All()
	}
	return Scope{Kind: AllMembersExcept, Names: names}
}

// Workspace reports whether the scope spans the whole workspace.
func (s Scope) Workspace() bool {
	return s.Kind == AllMembers || s.Kind == AllMembersExcept
}

// RootPolicy decides whether whole-workspace scopes include the root package.
type RootPolicy string

const (
	// RootWhenVersioned includes the root only when its manifest carries its
	// own version field.
	RootWhenVersioned RootPolicy = "versioned"
	// RootNever leaves the root out of whole-workspace scopes.
	RootNever RootPolicy = "never"
)

// ParseRootPolicy parses a root policy string, defaulting to "versioned".
func ParseRootPolicy(s string) (RootPolicy, error) {
	switch RootPolicy(s) {
	case RootWhenVersioned, "":
		return RootWhenVersioned, nil
	case RootNever:
		return RootNever, nil
	default:
		return "", fmt.Errorf("unknown root policy: %q (must be versioned or never)", s)
	}
}

// UnknownPackageError reports a requested package name absent from the workspace.
type UnknownPackageError struct {
	Name  string
	Known []string
}

func (e *UnknownPackageError) Error() string {
	return fmt.Sprintf("unknown package %q (workspace has: %s)", e.Name, strings.Join(e.Known, ", "))
}

// Selection is the ordered set of packages an operation acts on.
type Selection struct {
	Scope    Scope
	Packages []*workspace.Package
}

// Names returns the selected package names in order.
func (s *Selection) Names() []string {
	names := make([]string, len(s.Packages))
	for i, p := range s.Packages {
		names[i] = p.Name
	}
	return names
}

// Contains reports whether the named package is selected.
func (s *Selection) Contains(name string) bool {
	for _, p := range s.Packages {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Select resolves scope against w. Packages keep workspace discovery order.
func Select(w *workspace.Workspace, scope Scope, policy RootPolicy) (*Selection, error) {
	var pkgs []*workspace.Package
	switch scope.Kind {
	case RootOnly:
		pkgs = []*workspace.Package{w.RootPackage()}
	case Named:
		if len(scope.Names) == 0 {
			return nil, fmt.Errorf("no package names given")
		}
		want, err := lookup(w, scope.Names)
		if err != nil {
			return nil, err
		}
		pkgs = filter(w.Packages, func(p *workspace.Package) bool { return want[p.Name] })
	case AllMembers, AllMembersExcept:
		skip, err := lookup(w, scope.Names)
		if err != nil {
			return nil, err
		}
		pkgs = filter(w.Packages, func(p *workspace.Package) bool {
			if skip[p.Name] {
				return false
			}
			if p.Root {
				return includeRoot(w, p, policy)
			}
			return true
		})
	default:
		return nil, fmt.Errorf("unknown scope kind: %d", scope.Kind)
	}
	return &Selection{Scope: scope, Packages: pkgs}, nil
}

// includeRoot applies the root policy. A single-package workspace always
// includes its only package.
func includeRoot(w *workspace.Workspace, root *workspace.Package, policy RootPolicy) bool {
	if w.Single {
		return true
	}
	if policy == RootNever {
		return false
	}
	return root.Field.Kind != manifest.Missing
}

func lookup(w *workspace.Workspace, names []string) (map[string]bool, error) {
	set := toSet(names)
	for _, n := range names {
		if _, ok := w.Package(n); !ok {
			return nil, &UnknownPackageError{Name: n, Known: w.Names()}
		}
	}
	return set, nil
}

func filter(pkgs []*workspace.Package, keep func(*workspace.Package) bool) []*workspace.Package {
	var out []*workspace.Package
	for _, p := range pkgs {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
