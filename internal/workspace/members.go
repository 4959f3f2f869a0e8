package workspace

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fbkclanna/odometer/internal/manifest"
)

// expandMembers turns member patterns into an ordered, deduplicated list of
// package directories.
func expandMembers(root string, members *manifest.Members, a manifest.Adapter, opts Options) ([]string, error) {
	if members == nil || len(members.Patterns) == 0 {
		return nil, nil
	}
	logger := opts.logger()

	ignore := opts.Ignore
	if ignore == nil && !opts.IncludeIgnored {
		var err error
		if ignore, err = LoadIgnoreRules(root); err != nil {
			return nil, err
		}
	}

	exclude := make([]string, 0, len(members.Exclude)+len(opts.Exclude))
	for _, list := range [][]string{members.Exclude, opts.Exclude} {
		for _, e := range list {
			cleaned, err := cleanPattern(e)
			if err != nil {
				return nil, fmt.Errorf("exclusion: %w", err)
			}
			exclude = append(exclude, cleaned)
		}
	}

	seen := map[string]bool{canonical(root): true}
	var dirs []string
	consider := func(dir string) {
		rel := relSlash(root, dir)
		if !opts.IncludeIgnored && ignore != nil && ignore.Ignored(rel) {
			logger.Debug("skipping ignored member", "path", rel)
			return
		}
		if excluded(rel, exclude) {
			logger.Debug("skipping excluded member", "path", rel)
			return
		}
		c := canonical(dir)
		if seen[c] {
			return
		}
		seen[c] = true
		dirs = append(dirs, dir)
	}

	for _, raw := range members.Patterns {
		pattern, err := cleanPattern(raw)
		if err != nil {
			return nil, fmt.Errorf("member: %w", err)
		}

		if !hasMeta(pattern) {
			dir := filepath.Join(root, filepath.FromSlash(pattern))
			if !isDir(dir) {
				return nil, &MemberNotFoundError{Pattern: raw, Path: dir, Reason: "no such directory"}
			}
			if !isFile(filepath.Join(dir, a.FileName())) {
				return nil, &MemberNotFoundError{Pattern: raw, Path: dir, Reason: "no " + a.FileName()}
			}
			consider(dir)
			continue
		}

		matches, err := doublestar.Glob(os.DirFS(root), pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding member pattern %q: %w", raw, err)
		}
		sort.Strings(matches)
		if len(matches) == 0 {
			logger.Debug("member pattern matched nothing", "pattern", raw)
		}
		for _, m := range matches {
			dir := filepath.Join(root, filepath.FromSlash(m))
			if !isDir(dir) {
				continue
			}
			if !isFile(filepath.Join(dir, a.FileName())) {
				logger.Debug("skipping directory without manifest", "path", m)
				continue
			}
			consider(dir)
		}
	}
	return dirs, nil
}

// readManifests reads one manifest per directory, keeping input order.
func readManifests(a manifest.Adapter, dirs []string, jobs int) ([]*manifest.Document, error) {
	if jobs < 1 {
		jobs = 1
	}
	docs := make([]*manifest.Document, len(dirs))
	errs := make([]error, len(dirs))

	sem := make(chan struct{}, jobs)
	var wg sync.WaitGroup
	for i, dir := range dirs {
		wg.Add(1)
		go func(i int, dir string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			docs[i], errs[i] = a.Read(filepath.Join(dir, a.FileName()))
		}(i, dir)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return docs, nil
}

// cleanPattern normalizes a member pattern and rejects ones that leave the root.
func cleanPattern(p string) (string, error) {
	p = filepath.ToSlash(strings.TrimSpace(p))
	if p == "" {
		return "", fmt.Errorf("empty path pattern")
	}
	if path.IsAbs(p) || filepath.IsAbs(p) {
		return "", fmt.Errorf("absolute path is not allowed: %s", p)
	}
	cleaned := path.Clean(p)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("path must not escape the workspace root: %s", p)
	}
	if !doublestar.ValidatePattern(cleaned) {
		return "", fmt.Errorf("invalid pattern: %s", p)
	}
	return cleaned, nil
}

// excluded reports whether rel matches an exclusion pattern or lies under a
// literal excluded directory.
func excluded(rel string, patterns []string) bool {
	for _, p := range patterns {
		if rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func hasMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{\\")
}

func relSlash(root, dir string) string {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return filepath.ToSlash(dir)
	}
	return filepath.ToSlash(rel)
}

func canonical(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	return p
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

func isDir(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.IsDir()
}
