// Package engine runs one odometer request end to end: discover the
// workspace, select packages, plan the mutation, and commit it.
package engine
