// Package workspace discovers the workspace a directory belongs to. It walks
// upward to the root manifest, expands the root's member patterns against the
// filesystem while honoring ignore rules and exclusions, and reads every
// member manifest into an ordered list of packages.
package workspace
