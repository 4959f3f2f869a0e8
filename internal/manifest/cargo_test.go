package manifest

import (
	"errors"
	"testing"

	"github.com/fbkclanna/odometer/internal/version"
)

func TestCargo_Parse_field(t *testing.T) {
	tests := []struct {
		name string
		data string
		want VersionField
	}{
		{
			name: "explicit",
			data: "[package]\nname = \"core\"\nversion = \"1.2.3\"\n",
			want: ExplicitField(version.MustParse("1.2.3")),
		},
		{
			name: "literal string",
			data: "[package]\nname = \"core\"\nversion = '1.2.3-rc.1'\n",
			want: ExplicitField(version.MustParse("1.2.3-rc.1")),
		},
		{
			name: "inline inherited",
			data: "[package]\nname = \"core\"\nversion = { workspace = true }\n",
			want: InheritedField(),
		},
		{
			name: "dotted inherited",
			data: "[package]\nname = \"core\"\nversion.workspace = true\n",
			want: InheritedField(),
		},
		{
			name: "table inherited",
			data: "[package]\nname = \"core\"\n\n[package.version]\nworkspace = true\n",
			want: InheritedField(),
		},
		{
			name: "missing",
			data: "[package]\nname = \"core\"\n",
			want: MissingField(),
		},
		{
			name: "malformed string",
			data: "[package]\nname = \"core\"\nversion = \"x.y\"\n",
			want: MalformedField("x.y"),
		},
		{
			name: "malformed integer",
			data: "[package]\nname = \"core\"\nversion = 3\n",
			want: MalformedField("3"),
		},
		{
			name: "malformed inheritance",
			data: "[package]\nname = \"core\"\nversion = { workspace = false }\n",
			want: MalformedField("{ workspace = false }"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Cargo{}.Parse("crates/core/Cargo.toml", []byte(tt.data))
			if err != nil {
				t.Fatalf("Parse error = %v", err)
			}
			if !doc.Field.Same(tt.want) {
				t.Errorf("Field = %s, want %s", doc.Field, tt.want)
			}
			if doc.Name != "core" {
				t.Errorf("Name = %q, want %q", doc.Name, "core")
			}
		})
	}
}

func TestCargo_Parse_workspaceRoot(t *testing.T) {
	data := []byte(`[workspace]
members = ["crates/*", "tools/cli"]
exclude = ["crates/experimental"]

[workspace.package]
version = "0.4.0"
edition = "2021"
`)
	doc, err := Cargo{}.Parse("/repo/Cargo.toml", data)
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if doc.Workspace == nil {
		t.Fatal("Workspace should be set for a root manifest")
	}
	if len(doc.Workspace.Patterns) != 2 || doc.Workspace.Patterns[0] != "crates/*" {
		t.Errorf("Patterns = %v", doc.Workspace.Patterns)
	}
	if len(doc.Workspace.Exclude) != 1 || doc.Workspace.Exclude[0] != "crates/experimental" {
		t.Errorf("Exclude = %v", doc.Workspace.Exclude)
	}
	if doc.Field.Kind != Explicit || doc.Field.Version.String() != "0.4.0" {
		t.Errorf("Field = %s, want 0.4.0", doc.Field)
	}
	if doc.Name != "repo" || doc.HasName {
		t.Errorf("Name = %q (HasName %v), want directory name", doc.Name, doc.HasName)
	}
}

func TestCargo_Parse_rootWithPackage(t *testing.T) {
	data := []byte(`[package]
name = "app"
version.workspace = true

[workspace]
members = ["crates/*"]

[workspace.package]
version = "3.1.0"
`)
	doc, err := Cargo{}.Parse("/repo/Cargo.toml", data)
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if doc.Name != "app" {
		t.Errorf("Name = %q, want %q", doc.Name, "app")
	}
	if doc.Field.Kind != Explicit || doc.Field.Version.String() != "3.1.0" {
		t.Errorf("Field = %s, want workspace.package version 3.1.0", doc.Field)
	}
}

func TestCargo_Parse_rootOwnVersion(t *testing.T) {
	data := []byte(`[package]
name = "app"
version = "2.0.0"

[workspace]
members = ["crates/*"]
`)
	doc, err := Cargo{}.Parse("/repo/Cargo.toml", data)
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if doc.Field.Kind != Explicit || doc.Field.Version.String() != "2.0.0" {
		t.Errorf("Field = %s, want package version 2.0.0", doc.Field)
	}
	if !doc.Workspace.OwnVersionOnly {
		t.Error("OwnVersionOnly = false for a root without [workspace.package] version")
	}

	shared, err := Cargo{}.Parse("/repo/Cargo.toml", []byte("[package]\nname = \"app\"\nversion = \"2.0.0\"\n\n[workspace]\n\n[workspace.package]\nversion = \"2.0.0\"\n"))
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	if shared.Workspace.OwnVersionOnly {
		t.Error("OwnVersionOnly = true with a [workspace.package] version")
	}
}

func TestCargo_Parse_invalid(t *testing.T) {
	if _, err := (Cargo{}).Parse("Cargo.toml", []byte("[package\nname = ")); err == nil {
		t.Fatal("expected error for invalid TOML")
	}
}

func TestCargo_Write(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		field VersionField
		want  string
	}{
		{
			name: "replace explicit keeps comments",
			data: `# top comment
[package]
name = "core"   # the name
version = "1.2.3" # bumped by tooling
edition = "2021"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
`,
			field: ExplicitField(version.MustParse("1.3.0")),
			want: `# top comment
[package]
name = "core"   # the name
version = "1.3.0" # bumped by tooling
edition = "2021"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
`,
		},
		{
			name:  "keep literal quotes",
			data:  "[package]\nname = \"core\"\nversion = '1.2.3'\n",
			field: ExplicitField(version.MustParse("2.0.0")),
			want:  "[package]\nname = \"core\"\nversion = '2.0.0'\n",
		},
		{
			name:  "inline inherited becomes explicit",
			data:  "[package]\nname = \"core\"\nversion = { workspace = true }\nedition = \"2021\"\n",
			field: ExplicitField(version.MustParse("2.0.0")),
			want:  "[package]\nname = \"core\"\nversion = \"2.0.0\"\nedition = \"2021\"\n",
		},
		{
			name:  "dotted inherited becomes explicit",
			data:  "[package]\nname = \"core\"\nversion.workspace = true\n",
			field: ExplicitField(version.MustParse("2.0.0")),
			want:  "[package]\nname = \"core\"\nversion = \"2.0.0\"\n",
		},
		{
			name:  "explicit becomes inherited",
			data:  "[package]\nname = \"core\"\nversion = \"1.0.0\"\n",
			field: InheritedField(),
			want:  "[package]\nname = \"core\"\nversion = { workspace = true }\n",
		},
		{
			name:  "repair malformed",
			data:  "[package]\nname = \"core\"\nversion = 3\n",
			field: ExplicitField(version.MustParse("0.1.0")),
			want:  "[package]\nname = \"core\"\nversion = \"0.1.0\"\n",
		},
		{
			name:  "insert missing after name",
			data:  "[package]\nname = \"core\"\nedition = \"2021\"\n",
			field: ExplicitField(version.MustParse("0.1.0")),
			want:  "[package]\nname = \"core\"\nversion = \"0.1.0\"\nedition = \"2021\"\n",
		},
		{
			name:  "crlf line endings",
			data:  "[package]\r\nname = \"core\"\r\nedition = \"2021\"\r\n",
			field: ExplicitField(version.MustParse("0.1.0")),
			want:  "[package]\r\nname = \"core\"\r\nversion = \"0.1.0\"\r\nedition = \"2021\"\r\n",
		},
		{
			name:  "append workspace.package to virtual root",
			data:  "[workspace]\nmembers = [\"crates/*\"]\n",
			field: ExplicitField(version.MustParse("1.0.0")),
			want:  "[workspace]\nmembers = [\"crates/*\"]\n\n[workspace.package]\nversion = \"1.0.0\"\n",
		},
		{
			name:  "root workspace.package",
			data:  "[workspace]\nmembers = [\"crates/*\"]\n\n[workspace.package]\nversion = \"1.0.0\"\nedition = \"2021\"\n",
			field: ExplicitField(version.MustParse("1.1.0")),
			want:  "[workspace]\nmembers = [\"crates/*\"]\n\n[workspace.package]\nversion = \"1.1.0\"\nedition = \"2021\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Cargo{}.Parse("crates/core/Cargo.toml", []byte(tt.data))
			if err != nil {
				t.Fatalf("Parse error = %v", err)
			}
			out, err := Cargo{}.Write(doc, tt.field)
			if err != nil {
				t.Fatalf("Write error = %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("Write output =\n%s\nwant\n%s", out, tt.want)
			}
		})
	}
}

func TestCargo_Write_tableForm(t *testing.T) {
	data := []byte("[package]\nname = \"core\"\n\n[package.version]\nworkspace = true\n")
	doc, err := Cargo{}.Parse("Cargo.toml", data)
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	_, err = Cargo{}.Write(doc, ExplicitField(version.MustParse("1.0.0")))
	var se *SerializationError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *SerializationError", err)
	}
	if se.Path != "Cargo.toml" {
		t.Errorf("Path = %q, want %q", se.Path, "Cargo.toml")
	}
}

func TestCargo_Write_missingKind(t *testing.T) {
	doc, err := Cargo{}.Parse("Cargo.toml", []byte("[package]\nname = \"core\"\nversion = \"1.0.0\"\n"))
	if err != nil {
		t.Fatalf("Parse error = %v", err)
	}
	var se *SerializationError
	if _, err := (Cargo{}).Write(doc, MissingField()); !errors.As(err, &se) {
		t.Errorf("error = %v, want *SerializationError", err)
	}
}
