package manifest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fbkclanna/odometer/internal/version"
	"github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

// Cargo is the adapter for Cargo.toml manifests.
//
// A member's version lives at package.version. The workspace root's version,
// which inherited members defer to, lives at workspace.package.version.
type Cargo struct{}

var (
	cargoPackageVersion   = []string{"package", "version"}
	cargoWorkspaceVersion = []string{"workspace", "package", "version"}
)

const tomlInheritMarker = "{ workspace = true }"

type cargoPackage struct {
	Name    any `toml:"name"`
	Version any `toml:"version"`
}

type cargoWorkspace struct {
	Members []string `toml:"members"`
	Exclude []string `toml:"exclude"`
	Package *struct {
		Version any `toml:"version"`
	} `toml:"package"`
}

type cargoManifest struct {
	Package   *cargoPackage   `toml:"package"`
	Workspace *cargoWorkspace `toml:"workspace"`
}

func (Cargo) Dialect() Dialect { return TOML }

func (Cargo) FileName() string { return "Cargo.toml" }

func (c Cargo) Read(path string) (*Document, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return c.Parse(path, data)
}

func (Cargo) Parse(path string, data []byte) (*Document, error) {
	var m cargoManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	doc := &Document{
		Path:    path,
		Dialect: TOML,
		Name:    dirName(path),
		Data:    data,
		Sum:     Fingerprint(data),
		tomlKey: cargoPackageVersion,
	}
	if m.Package != nil {
		if name, ok := m.Package.Name.(string); ok && name != "" {
			doc.Name = name
			doc.HasName = true
		}
	}

	var raw any
	switch {
	case m.Workspace != nil && m.Workspace.Package != nil && m.Workspace.Package.Version != nil:
		raw = m.Workspace.Package.Version
		doc.tomlKey = cargoWorkspaceVersion
	case m.Package != nil && m.Package.Version != nil:
		raw = m.Package.Version
	case m.Workspace != nil && m.Package == nil:
		doc.tomlKey = cargoWorkspaceVersion
	}
	if m.Workspace != nil {
		doc.Workspace = &Members{
			Patterns: m.Workspace.Members,
			Exclude:  m.Workspace.Exclude,
			Source:   path,

			OwnVersionOnly: m.Package != nil && equalKeys(doc.tomlKey, cargoPackageVersion),
		}
	}

	span, err := locateTOML(data, doc.tomlKey)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	doc.span = span
	doc.Field = classifyTOML(raw, data, span)
	return doc, nil
}

func classifyTOML(raw any, data []byte, s *fieldSpan) VersionField {
	source := func() string {
		if s.found && !s.tableForm {
			return string(data[s.start:s.end])
		}
		return fmt.Sprint(raw)
	}
	switch v := raw.(type) {
	case nil:
		return MissingField()
	case string:
		parsed, err := version.Parse(v)
		if err != nil {
			return MalformedField(v)
		}
		return ExplicitField(parsed)
	case map[string]any:
		if ws, ok := v["workspace"].(bool); ok && ws {
			return InheritedField()
		}
		return MalformedField(source())
	default:
		return MalformedField(source())
	}
}

func (c Cargo) Write(doc *Document, f VersionField) ([]byte, error) {
	s := doc.span
	if s == nil {
		return nil, &SerializationError{Path: doc.Path, Reason: "document was not parsed"}
	}
	if s.tableForm {
		return nil, &SerializationError{
			Path:   doc.Path,
			Reason: fmt.Sprintf("[%s] table cannot be rewritten in place", strings.Join(doc.tomlKey, ".")),
		}
	}

	var value string
	switch f.Kind {
	case Explicit:
		q := `"`
		if s.found && s.keyPrefix == "" && doc.Data[s.start] == '\'' {
			q = `'`
		}
		value = q + f.Version.String() + q
	case Inherited:
		value = tomlInheritMarker
	default:
		return nil, &SerializationError{Path: doc.Path, Reason: fmt.Sprintf("cannot write a %s field", f.Kind)}
	}

	nl := newline(doc.Data)
	var e Edit
	switch {
	case s.found && s.keyPrefix != "":
		e = Edit{Start: s.start, End: s.end, Text: s.keyPrefix + " = " + value}
	case s.found:
		e = Edit{Start: s.start, End: s.end, Text: value}
	case s.insertAt >= 0:
		e = Edit{Start: s.insertAt, End: s.insertAt, Text: nl + "version = " + value}
	default:
		var b strings.Builder
		if n := len(doc.Data); n > 0 {
			if doc.Data[n-1] != '\n' {
				b.WriteString(nl)
			}
			b.WriteString(nl)
		}
		b.WriteString("[" + strings.Join(doc.tomlKey[:len(doc.tomlKey)-1], ".") + "]" + nl)
		b.WriteString("version = " + value + nl)
		e = Edit{Start: len(doc.Data), End: len(doc.Data), Text: b.String()}
	}

	out := e.Apply(doc.Data)
	if err := checkRewrite(c, doc, out, f); err != nil {
		return nil, err
	}
	return out, nil
}

// fieldSpan locates a version field in manifest bytes.
type fieldSpan struct {
	found bool
	start int
	end   int
	// keyPrefix is set when the span covers a dotted key such as
	// `version.workspace = true`; the replacement restates the key.
	keyPrefix string
	// tableForm marks a [package.version] table.
	tableForm bool
	// insertAt is where a missing field is inserted, or -1 when the
	// parent table has no header and must be appended.
	insertAt int
}

func locateTOML(data []byte, key []string) (*fieldSpan, error) {
	s := &fieldSpan{insertAt: -1}
	parent := key[:len(key)-1]

	var p unstable.Parser
	p.Reset(data)

	var table []string
	inArray := false
	inParent := false
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table, unstable.ArrayTable:
			var nodes []*unstable.Node
			table, nodes = tomlKeys(e.Key())
			inArray = e.Kind == unstable.ArrayTable
			inParent = !inArray && equalKeys(table, parent)
			if inArray {
				continue
			}
			if hasPrefix(table, key) {
				s.found, s.tableForm = true, true
			}
			if inParent && len(nodes) > 0 {
				s.insertAt = lineEnd(data, rawEnd(nodes[len(nodes)-1]))
			}
		case unstable.KeyValue:
			if inArray {
				continue
			}
			keys, nodes := tomlKeys(e.Key())
			if len(nodes) == 0 {
				continue
			}
			start, end := valueRange(data, e.Value(), nodes[len(nodes)-1])
			if inParent && len(keys) == 1 && keys[0] == "name" {
				s.insertAt = lineEnd(data, end)
			}

			full := append(append([]string{}, table...), keys...)
			if !hasPrefix(full, key) {
				continue
			}
			if len(full) == len(key) {
				s.found, s.start, s.end = true, start, end
				continue
			}
			idx := len(key) - len(table) - 1
			if idx < 0 {
				continue
			}
			first := int(nodes[0].Raw.Offset)
			s.found = true
			s.start, s.end = first, end
			s.keyPrefix = string(data[first:rawEnd(nodes[idx])])
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return s, nil
}

func tomlKeys(it unstable.Iterator) ([]string, []*unstable.Node) {
	var keys []string
	var nodes []*unstable.Node
	for it.Next() {
		n := it.Node()
		keys = append(keys, string(n.Data))
		nodes = append(nodes, n)
	}
	return keys, nodes
}

func rawEnd(n *unstable.Node) int {
	return int(n.Raw.Offset + n.Raw.Length)
}

// valueRange returns the byte range of a key/value's value.
func valueRange(data []byte, v *unstable.Node, lastKey *unstable.Node) (int, int) {
	if v.Raw.Length > 0 && v.Kind != unstable.InlineTable && v.Kind != unstable.Array {
		return int(v.Raw.Offset), rawEnd(v)
	}

	i := rawEnd(lastKey)
	for i < len(data) && data[i] != '=' {
		i++
	}
	i++
	for i < len(data) && (data[i] == ' ' || data[i] == '\t') {
		i++
	}
	if i > len(data) {
		i = len(data)
	}

	switch v.Kind {
	case unstable.InlineTable, unstable.Array:
		return i, matchBracket(data, i)
	default:
		return i, scanScalar(data, i)
	}
}

// matchBracket returns the offset just past the bracket that closes the one at start.
func matchBracket(data []byte, start int) int {
	depth := 0
	var quote byte
	for i := start; i < len(data); i++ {
		c := data[i]
		switch {
		case quote != 0:
			if c == '\\' && quote == '"' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#':
			for i < len(data) && data[i] != '\n' {
				i++
			}
		case c == '[' || c == '{':
			depth++
		case c == ']' || c == '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(data)
}

func scanScalar(data []byte, start int) int {
	end := start
	for end < len(data) && data[end] != '\n' && data[end] != '\r' && data[end] != '#' {
		end++
	}
	return start + len(bytes.TrimRight(data[start:end], " \t"))
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasPrefix(keys, prefix []string) bool {
	return len(keys) >= len(prefix) && equalKeys(keys[:len(prefix)], prefix)
}
