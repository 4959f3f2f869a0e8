// Package testutil writes Cargo and npm workspace fixtures and git
// repositories for tests.
package testutil
