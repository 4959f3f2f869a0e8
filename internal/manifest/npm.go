package manifest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fbkclanna/odometer/internal/version"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// NPM is the adapter for package.json manifests.
//
// A version beginning with "workspace:" (for example "workspace:*") defers to
// the workspace root. The root declares members through "workspaces", either
// as an array or as {"packages": [...]}, or through a sibling
// pnpm-workspace.yaml. Patterns prefixed with "!" are exclusions.
type NPM struct{}

const (
	npmInheritPrefix = "workspace:"
	npmInheritMarker = "workspace:*"
)

func (NPM) Dialect() Dialect { return JSON }

func (NPM) FileName() string { return "package.json" }

func (n NPM) Read(path string) (*Document, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := n.Parse(path, data)
	if err != nil {
		return nil, err
	}

	pnpm, ok, err := readPNPMWorkspace(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	if ok {
		if doc.Workspace == nil {
			doc.Workspace = pnpm
		} else {
			doc.Workspace.Patterns = append(doc.Workspace.Patterns, pnpm.Patterns...)
			doc.Workspace.Exclude = append(doc.Workspace.Exclude, pnpm.Exclude...)
		}
	}
	return doc, nil
}

func (NPM) Parse(path string, data []byte) (*Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parsing %s: invalid JSON", path)
	}
	if root := gjson.ParseBytes(data); !root.IsObject() {
		return nil, fmt.Errorf("parsing %s: top-level value is not an object", path)
	}

	doc := &Document{
		Path:    path,
		Dialect: JSON,
		Name:    dirName(path),
		Data:    data,
		Sum:     Fingerprint(data),
	}
	if name := gjson.GetBytes(data, "name"); name.Type == gjson.String && name.Str != "" {
		doc.Name = name.Str
		doc.HasName = true
	}

	v := gjson.GetBytes(data, "version")
	switch {
	case !v.Exists() || v.Type == gjson.Null:
		doc.Field = MissingField()
	case v.Type == gjson.String && strings.HasPrefix(v.Str, npmInheritPrefix):
		doc.Field = InheritedField()
	case v.Type == gjson.String:
		parsed, err := version.Parse(v.Str)
		if err != nil {
			doc.Field = MalformedField(v.Str)
		} else {
			doc.Field = ExplicitField(parsed)
		}
	default:
		doc.Field = MalformedField(v.Raw)
	}

	ws := gjson.GetBytes(data, "workspaces")
	if ws.IsObject() {
		ws = ws.Get("packages")
	}
	if ws.IsArray() {
		doc.Workspace = &Members{Source: path}
		for _, p := range ws.Array() {
			if p.Type != gjson.String {
				continue
			}
			if ex, ok := strings.CutPrefix(p.Str, "!"); ok {
				doc.Workspace.Exclude = append(doc.Workspace.Exclude, ex)
				continue
			}
			doc.Workspace.Patterns = append(doc.Workspace.Patterns, p.Str)
		}
	}
	return doc, nil
}

func (n NPM) Write(doc *Document, f VersionField) ([]byte, error) {
	var value string
	switch f.Kind {
	case Explicit:
		value = f.Version.String()
	case Inherited:
		value = npmInheritMarker
	default:
		return nil, &SerializationError{Path: doc.Path, Reason: fmt.Sprintf("cannot write a %s field", f.Kind)}
	}

	var out []byte
	cur := gjson.GetBytes(doc.Data, "version")
	name := gjson.GetBytes(doc.Data, "name")
	switch {
	case cur.Exists() && located(doc.Data, cur):
		out = Edit{Start: cur.Index, End: cur.Index + len(cur.Raw), Text: fmt.Sprintf("%q", value)}.Apply(doc.Data)
	case !cur.Exists() && name.Exists() && located(doc.Data, name):
		out = insertAfterMember(doc.Data, name, "version", value)
	default:
		var err error
		if out, err = sjson.SetBytes(doc.Data, "version", value); err != nil {
			return nil, &SerializationError{Path: doc.Path, Reason: err.Error()}
		}
	}

	if err := checkRewrite(n, doc, out, f); err != nil {
		return nil, err
	}
	return out, nil
}

// located reports whether r's byte offset points at its raw text in data.
func located(data []byte, r gjson.Result) bool {
	return r.Index > 0 && r.Index+len(r.Raw) <= len(data) &&
		bytes.Equal(data[r.Index:r.Index+len(r.Raw)], []byte(r.Raw))
}

// insertAfterMember adds "key": value right after the member whose value is
// prev, copying the indentation and colon spacing of prev's line.
func insertAfterMember(data []byte, prev gjson.Result, key, value string) []byte {
	at := prev.Index + len(prev.Raw)
	ls := lineStart(data, prev.Index)
	line := data[ls:prev.Index]
	trimmed := bytes.TrimLeft(line, " \t")

	colon := ":"
	if prev.Index > 0 && data[prev.Index-1] == ' ' {
		colon = ": "
	}
	member := fmt.Sprintf("%q%s%q", key, colon, value)

	// Multi-line objects keep one member per line.
	if ls > 0 && bytes.HasPrefix(trimmed, []byte(`"`)) {
		indent := string(line[:len(line)-len(trimmed)])
		return Edit{Start: at, End: at, Text: "," + newline(data) + indent + member}.Apply(data)
	}
	return Edit{Start: at, End: at, Text: "," + member}.Apply(data)
}
