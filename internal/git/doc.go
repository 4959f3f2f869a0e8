// Package git wraps the few Git CLI queries odometer needs: locating the
// repository that contains a workspace and listing manifests with
// uncommitted changes.
package git
