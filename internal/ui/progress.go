package ui

import (
	"fmt"
	"io"
	"sync"
)

// Progress prints one counter line per committed manifest.
type Progress struct {
	out   io.Writer
	total int
	verb  string

	mu   sync.Mutex
	done int
}

// NewProgress creates a tracker for total files. verb prefixes each label,
// e.g. "wrote".
func NewProgress(out io.Writer, total int, verb string) *Progress {
	return &Progress{out: out, total: total, verb: verb}
}

// Done records one finished file.
func (p *Progress) Done(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	_, _ = fmt.Fprintf(p.out, "[%d/%d] %s %s\n", p.done, p.total, Paint(Changed, p.verb), label)
}

// Count returns the number of finished files.
func (p *Progress) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}
