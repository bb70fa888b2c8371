// Package tracker holds the attendance reconciliation core shared by the CLI
// and the API: the record store for a loaded scope, search and filtering,
// pagination, field-level edit tracking, shift conflict detection, and the
// submission gate that decides whether pending edits may be sent.
//
// Nothing in this package talks to a network or database directly; data
// arrives through a Source and leaves through a Submitter.
package tracker
