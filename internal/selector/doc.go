// Package selector turns a requested scope into the ordered set of workspace
// packages an operation acts on.
package selector
