package main

import (
	"bytes"
	"testing"

	"github.com/fbkclanna/odometer/internal/testutil"
)

// setupCargo writes a Cargo workspace: root 1.4.0, core explicit, cli
// inheriting, web on its own version.
func setupCargo(t *testing.T) string {
	t.Helper()
	return testutil.WriteTree(t, map[string]string{
		"Cargo.toml":             testutil.CargoRoot("1.4.0", "crates/*"),
		"crates/core/Cargo.toml": testutil.Crate("core", "1.4.0"),
		"crates/cli/Cargo.toml":  testutil.Crate("cli", "workspace"),
		"crates/web/Cargo.toml":  testutil.Crate("web", "0.9.2"),
	})
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func stubTerminal(t *testing.T, tty bool) {
	t.Helper()
	orig := isTerminal
	isTerminal = func() bool { return tty }
	t.Cleanup(func() { isTerminal = orig })
}
