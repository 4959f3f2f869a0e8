package txn

import (
	"fmt"
	"strings"
)

// ConflictError reports a manifest that changed on disk after it was read.
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s was modified after it was read; rerun the command", e.Path)
}

// PartialCommitError reports a flush that failed after earlier files were
// already written. Committed files hold the new version; Failed and Pending
// still hold the old one.
type PartialCommitError struct {
	Committed []string
	Failed    string
	Pending   []string
	Journal   string
	Err       error
}

func (e *PartialCommitError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "partial commit: writing %s failed: %v", e.Failed, e.Err)
	fmt.Fprintf(&b, "\n  committed (%d): %s", len(e.Committed), strings.Join(e.Committed, ", "))
	fmt.Fprintf(&b, "\n  not written (%d): %s", len(e.Pending)+1, strings.Join(append([]string{e.Failed}, e.Pending...), ", "))
	if e.Journal != "" {
		fmt.Fprintf(&b, "\n  recovery journal: %s", e.Journal)
	}
	return b.String()
}

func (e *PartialCommitError) Unwrap() error {
	return e.Err
}
