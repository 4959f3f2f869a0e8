// Command odo keeps package versions in Cargo and npm workspaces in step.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fbkclanna/odometer/internal/txn"
)

// Set via -ldflags at build time.
var buildVersion = "dev"

const (
	exitError = 1
	// exitPartialCommit means some manifests were written before a failure.
	exitPartialCommit = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd()
	return exitCode(rootCmd.ErrOrStderr(), rootCmd.Execute())
}

// exitCode prints err and returns the process exit status for it.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(w, "Error:", err)
	if txn.IsPartialCommit(err) {
		fmt.Fprintln(w, "The workspace is only partly updated. Reconcile the listed manifests by hand before running odo again.")
		return exitPartialCommit
	}
	return exitError
}
