// Package version implements semantic version values: parsing, formatting,
// precedence ordering, and the roll arithmetic used by major, minor, and
// patch increments.
package version
