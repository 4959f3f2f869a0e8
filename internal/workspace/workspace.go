package workspace

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fbkclanna/odometer/internal/manifest"
)

// Package is one versioned manifest in a workspace.
type Package struct {
	Name     string
	Dir      string
	RelDir   string // slash-separated, "." for the root
	Manifest string
	Dialect  manifest.Dialect
	Field    manifest.VersionField
	Doc      *manifest.Document
	Root     bool
}

// Workspace is a root directory and its packages. Packages[0] is always the root.
type Workspace struct {
	Root     string
	Dialect  manifest.Dialect
	Single   bool
	Packages []*Package
	Adapter  manifest.Adapter
}

// RootPackage returns the workspace root package.
func (w *Workspace) RootPackage() *Package {
	return w.Packages[0]
}

// Members returns every package except the root.
func (w *Workspace) Members() []*Package {
	return w.Packages[1:]
}

// Package looks up a package by name.
func (w *Workspace) Package(name string) (*Package, bool) {
	for _, p := range w.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Names returns package names in discovery order.
func (w *Workspace) Names() []string {
	names := make([]string, len(w.Packages))
	for i, p := range w.Packages {
		names[i] = p.Name
	}
	return names
}

// Options controls discovery.
type Options struct {
	// IncludeIgnored disables ignore-rule filtering of member candidates.
	IncludeIgnored bool
	// Exclude lists member path patterns, relative to the root, to drop in
	// addition to the root manifest's own exclusions.
	Exclude []string
	// Ignore overrides the ignore rules read from the root directory.
	Ignore IgnoreRules
	// Jobs bounds concurrent manifest reads. Values below 1 mean 1.
	Jobs   int
	Logger *log.Logger
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard)
}

// Resolve discovers the workspace containing dir.
func Resolve(dir string, opts Options) (*Workspace, error) {
	logger := opts.logger()

	rootDoc, adapter, err := FindRoot(dir)
	if errors.Is(err, ErrNoWorkspaceFound) {
		logger.Debug("no workspace root found, using single-package mode", "manifest", rootDoc.Path)
		return single(rootDoc, adapter), nil
	}
	if err != nil {
		return nil, err
	}

	root := filepath.Dir(rootDoc.Path)
	logger.Debug("found workspace root", "root", root, "dialect", adapter.Dialect())

	w := &Workspace{Root: root, Dialect: adapter.Dialect(), Adapter: adapter}
	w.Packages = append(w.Packages, newPackage(root, rootDoc, true))

	dirs, err := expandMembers(root, rootDoc.Workspace, adapter, opts)
	if err != nil {
		return nil, err
	}

	docs, err := readManifests(adapter, dirs, opts.Jobs)
	if err != nil {
		return nil, err
	}

	seen := map[string]*Package{w.Packages[0].Name: w.Packages[0]}
	for _, doc := range docs {
		p := newPackage(root, doc, false)
		if prev, ok := seen[p.Name]; ok {
			return nil, &DuplicatePackageError{Name: p.Name, First: prev.Manifest, Second: p.Manifest}
		}
		seen[p.Name] = p
		w.Packages = append(w.Packages, p)
	}

	logger.Debug("resolved workspace", "root", root, "members", len(w.Packages)-1)
	return w, nil
}

// FindRoot walks upward from dir to the nearest manifest declaring a
// workspace. When there is none it returns the nearest manifest together
// with ErrNoWorkspaceFound.
func FindRoot(dir string) (*manifest.Document, manifest.Adapter, error) {
	start, err := filepath.Abs(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving start directory: %w", err)
	}

	var nearest *manifest.Document
	var nearestAdapter manifest.Adapter
	for cur := start; ; {
		for _, a := range manifest.Adapters() {
			path := filepath.Join(cur, a.FileName())
			if !isFile(path) {
				continue
			}
			doc, err := a.Read(path)
			if err != nil {
				return nil, nil, err
			}
			if doc.Workspace != nil {
				return doc, a, nil
			}
			if nearest == nil {
				nearest, nearestAdapter = doc, a
			}
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}

	if nearest == nil {
		return nil, nil, fmt.Errorf("%w in %s or any parent directory", ErrNoManifest, start)
	}
	return nearest, nearestAdapter, ErrNoWorkspaceFound
}

func single(doc *manifest.Document, a manifest.Adapter) *Workspace {
	root := filepath.Dir(doc.Path)
	return &Workspace{
		Root:     root,
		Dialect:  a.Dialect(),
		Single:   true,
		Adapter:  a,
		Packages: []*Package{newPackage(root, doc, true)},
	}
}

func newPackage(root string, doc *manifest.Document, isRoot bool) *Package {
	dir := filepath.Dir(doc.Path)
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		rel = dir
	}
	return &Package{
		Name:     doc.Name,
		Dir:      dir,
		RelDir:   filepath.ToSlash(rel),
		Manifest: doc.Path,
		Dialect:  doc.Dialect,
		Field:    doc.Field,
		Doc:      doc,
		Root:     isRoot,
	}
}
