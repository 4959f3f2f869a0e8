// Package ui renders version tables, commit progress, and status styling for
// the odo command.
package ui
