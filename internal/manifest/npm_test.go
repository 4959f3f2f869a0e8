package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fbkclanna/odometer/internal/version"
)

func TestNPM_Parse_field(t *testing.T) {
	tests := []struct {
		name string
		data string
		want VersionField
	}{
		{"explicit", `{"name": "web", "version": "1.2.3"}`, ExplicitField(version.MustParse("1.2.3"))},
		{"inherited star", `{"name": "web", "version": "workspace:*"}`, InheritedField()},
		{"inherited caret", `{"name": "web", "version": "workspace:^"}`, InheritedField()},
		{"missing", `{"name": "web"}`, MissingField()},
		{"null", `{"name": "web", "version": null}`, MissingField()},
		{"malformed string", `{"name": "web", "version": "x.y"}`, MalformedField("x.y")},
		{"malformed number", `{"name": "web", "version": 1}`, MalformedField("1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NPM{}.Parse("packages/web/package.json", []byte(tt.data))
			if err != nil {
				t.Fatalf("Parse error = %v", err)
			}
			if !doc.Field.Same(tt.want) {
				t.Errorf("Field = %s, want %s", doc.Field, tt.want)
			}
			if doc.Name != "web" {
				t.Errorf("Name = %q, want %q", doc.Name, "web")
			}
		})
	}
}

func TestNPM_Parse_workspaces(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		patterns []string
		exclude  []string
	}{
		{"array", `{"name": "root", "workspaces": ["packages/*", "!packages/legacy"]}`, []string{"packages/*"}, []string{"packages/legacy"}},
		{"object", `{"name": "root", "workspaces": {"packages": ["apps/*", "libs/*"]}}`, []string{"apps/*", "libs/*"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NPM{}.Parse("package.json", []byte(tt.data))
			if err != nil {
				t.Fatalf("Parse error = %v", err)
			}
			if doc.Workspace == nil {
				t.Fatal("Workspace should be set")
			}
			if !equalKeys(doc.Workspace.Patterns, tt.patterns) {
				t.Errorf("Patterns = %v, want %v", doc.Workspace.Patterns, tt.patterns)
			}
			if !equalKeys(doc.Workspace.Exclude, tt.exclude) {
				t.Errorf("Exclude = %v, want %v", doc.Workspace.Exclude, tt.exclude)
			}
		})
	}
}

func TestNPM_Parse_noWorkspaces(t *testing.T) {
	doc, err := NPM{}.Parse("package.json", []byte(`{"name": "solo", "version": "0.1.0"}`))
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if doc.Workspace != nil {
		t.Errorf("Workspace = %+v, want nil", doc.Workspace)
	}
}

func TestNPM_Parse_invalid(t *testing.T) {
	for _, data := range []string{`{"name": `, `[1, 2]`, ``} {
		if _, err := (NPM{}).Parse("package.json", []byte(data)); err == nil {
			t.Errorf("Parse(%q) should fail", data)
		}
	}
}

func TestNPM_Read_pnpmWorkspace(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "root", "version": "1.0.0", "private": true}`)
	writeFile(t, filepath.Join(dir, PNPMWorkspaceFile), "packages:\n  - 'packages/*'\n  - '!packages/scratch'\n")

	doc, err := NPM{}.Read(filepath.Join(dir, "package.json"))
	if err != nil {
		t.Fatalf("Read error = %v", err)
	}
	if doc.Workspace == nil {
		t.Fatal("Workspace should come from pnpm-workspace.yaml")
	}
	if !equalKeys(doc.Workspace.Patterns, []string{"packages/*"}) {
		t.Errorf("Patterns = %v", doc.Workspace.Patterns)
	}
	if !equalKeys(doc.Workspace.Exclude, []string{"packages/scratch"}) {
		t.Errorf("Exclude = %v", doc.Workspace.Exclude)
	}
}

func TestNPM_Write(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		field VersionField
		want  string
	}{
		{
			name: "replace keeps layout",
			data: `{
  "name": "web",
  "version": "1.2.3",
  "scripts": {"build": "tsc"},
  "dependencies": {
    "core": "workspace:*"
  }
}
`,
			field: ExplicitField(version.MustParse("1.2.4")),
			want: `{
  "name": "web",
  "version": "1.2.4",
  "scripts": {"build": "tsc"},
  "dependencies": {
    "core": "workspace:*"
  }
}
`,
		},
		{
			name:  "inherited becomes explicit",
			data:  "{\n\t\"name\": \"web\",\n\t\"version\": \"workspace:*\"\n}\n",
			field: ExplicitField(version.MustParse("2.0.0")),
			want:  "{\n\t\"name\": \"web\",\n\t\"version\": \"2.0.0\"\n}\n",
		},
		{
			name:  "write inherited marker",
			data:  "{\n  \"name\": \"web\",\n  \"version\": \"1.0.0\"\n}\n",
			field: InheritedField(),
			want:  "{\n  \"name\": \"web\",\n  \"version\": \"workspace:*\"\n}\n",
		},
		{
			name:  "repair number",
			data:  "{\n  \"name\": \"web\",\n  \"version\": 1\n}\n",
			field: ExplicitField(version.MustParse("1.0.0")),
			want:  "{\n  \"name\": \"web\",\n  \"version\": \"1.0.0\"\n}\n",
		},
		{
			name:  "insert after name",
			data:  "{\n    \"name\": \"web\",\n    \"private\": true\n}\n",
			field: ExplicitField(version.MustParse("0.1.0")),
			want:  "{\n    \"name\": \"web\",\n    \"version\": \"0.1.0\",\n    \"private\": true\n}\n",
		},
		{
			name:  "insert after last member",
			data:  "{\n  \"name\": \"web\"\n}\n",
			field: ExplicitField(version.MustParse("0.1.0")),
			want:  "{\n  \"name\": \"web\",\n  \"version\": \"0.1.0\"\n}\n",
		},
		{
			name:  "compact",
			data:  `{"name":"web","private":true}`,
			field: ExplicitField(version.MustParse("0.1.0")),
			want:  `{"name":"web","version":"0.1.0","private":true}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := NPM{}.Parse("package.json", []byte(tt.data))
			if err != nil {
				t.Fatalf("Parse error = %v", err)
			}
			out, err := NPM{}.Write(doc, tt.field)
			if err != nil {
				t.Fatalf("Write error = %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("Write output =\n%s\nwant\n%s", out, tt.want)
			}
		})
	}
}

func TestNPM_Write_noName(t *testing.T) {
	doc, err := NPM{}.Parse("pkg/package.json", []byte(`{"private": true}`))
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	out, err := NPM{}.Write(doc, ExplicitField(version.MustParse("1.0.0")))
	if err != nil {
		t.Fatalf("Write error = %v", err)
	}
	got, err := NPM{}.Parse("pkg/package.json", out)
	if err != nil {
		t.Fatalf("re-Parse error = %v", err)
	}
	if got.Field.Kind != Explicit || got.Field.Version.String() != "1.0.0" {
		t.Errorf("Field = %s, want 1.0.0", got.Field)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // test file
		t.Fatal(err)
	}
}
