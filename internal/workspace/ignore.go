package workspace

import (
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreRules decides whether a workspace-relative directory is ignored.
type IgnoreRules interface {
	Ignored(rel string) bool
}

type gitIgnore struct {
	m gitignore.Matcher
}

// LoadIgnoreRules reads .gitignore files under root and .git/info/exclude.
func LoadIgnoreRules(root string) (IgnoreRules, error) {
	ps, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		return nil, fmt.Errorf("reading ignore rules in %s: %w", root, err)
	}
	return gitIgnore{m: gitignore.NewMatcher(ps)}, nil
}

// IgnorePatterns builds rules from gitignore-syntax lines rooted at the workspace.
func IgnorePatterns(lines ...string) IgnoreRules {
	ps := make([]gitignore.Pattern, 0, len(lines))
	for _, l := range lines {
		ps = append(ps, gitignore.ParsePattern(l, nil))
	}
	return gitIgnore{m: gitignore.NewMatcher(ps)}
}

func (g gitIgnore) Ignored(rel string) bool {
	if rel == "." || rel == "" {
		return false
	}
	return g.m.Match(strings.Split(rel, "/"), true)
}
