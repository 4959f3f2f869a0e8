// Package plan computes the target version of every selected package for a
// roll, set, sync, or inherit operation, and inspects version fields for lint.
// Planning is all or nothing: any package that cannot be resolved fails the
// whole plan.
package plan
