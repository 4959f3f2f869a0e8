package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotRepository is returned when a directory is not inside a Git work tree.
var ErrNotRepository = errors.New("not a git repository")

// IsInstalled returns true if git is available on the system PATH.
func IsInstalled() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// TopLevel returns the root of the work tree containing dir.
func TopLevel(dir string) (string, error) {
	out, err := outputQuiet(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		if isExitError(err) {
			return "", fmt.Errorf("%s: %w", dir, ErrNotRepository)
		}
		return "", err
	}
	return filepath.FromSlash(strings.TrimSpace(out)), nil
}

// Modified returns the subset of paths (absolute, inside the work tree at
// top) that have staged or unstaged changes. Untracked files are not reported.
func Modified(top string, paths ...string) ([]string, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	args := []string{"status", "--porcelain", "-z", "--untracked-files=no", "--"}
	for _, p := range paths {
		rel, err := filepath.Rel(top, p)
		if err != nil {
			return nil, fmt.Errorf("%s is outside %s: %w", p, top, err)
		}
		args = append(args, filepath.ToSlash(rel))
	}
	out, err := outputQuiet(top, args...)
	if err != nil {
		return nil, err
	}
	return parsePorcelain(top, out), nil
}

// parsePorcelain reads NUL-separated "XY path" records. Renames and copies
// carry an extra record with the source path, which is skipped.
func parsePorcelain(top, out string) []string {
	var files []string
	records := strings.Split(out, "\x00")
	for i := 0; i < len(records); i++ {
		rec := records[i]
		if len(rec) < 4 {
			continue
		}
		xy, path := rec[:2], rec[3:]
		files = append(files, filepath.Join(top, filepath.FromSlash(path)))
		if xy[0] == 'R' || xy[0] == 'C' {
			i++
		}
	}
	return files
}

// outputQuiet executes a git command and returns its stdout without printing to the console.
func outputQuiet(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &CommandError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return stdout.String(), nil
}

// CommandError is a failed git invocation.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("git %s: %v: %s", strings.Join(e.Args, " "), e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error { return e.Err }

func isExitError(err error) bool {
	var ee *exec.ExitError
	return errors.As(err, &ee)
}
