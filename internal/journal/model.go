package journal

// DefaultFile is the journal name written to the workspace root.
const DefaultFile = ".odometer-recovery.yaml"

// State is what happened to one manifest during the commit.
type State string

const (
	Committed State = "committed"
	Failed    State = "failed"
	Pending   State = "pending"
)

// File represents a recovery journal.
type File struct {
	Version     int     `yaml:"version"`
	GeneratedAt string  `yaml:"generated_at"`
	ToolVersion string  `yaml:"tool_version"`
	Operation   string  `yaml:"operation"`
	Error       string  `yaml:"error"`
	Files       []Entry `yaml:"files"`
}

// Entry records the intended change to one manifest.
type Entry struct {
	Package string `yaml:"package"`
	Path    string `yaml:"path"`
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	State   State  `yaml:"state"`
}

// Count returns how many entries are in state s.
func (f *File) Count(s State) int {
	n := 0
	for _, e := range f.Files {
		if e.State == s {
			n++
		}
	}
	return n
}
