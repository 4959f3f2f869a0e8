// Package manifest reads and rewrites the version field of package manifests.
// Two dialects are supported: Cargo.toml (TOML) and package.json (JSON, with
// pnpm-workspace.yaml as an alternate member list). Writes are targeted byte
// edits of the version field; every other byte of the file is preserved.
package manifest
