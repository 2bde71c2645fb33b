package types

// OperationResult is the synchronous outcome of a single platform handler
// call. It is transient and never persisted.
type OperationResult struct {
	Success bool

	// Message is a human-readable one-liner describing what happened
	// (or, under dry-run, what would have happened).
	Message string

	// PreviousDefault is the OS default observed immediately before the
	// mutation. Empty means "unknown", never "no default".
	PreviousDefault string

	// ErrorCode is set when Success is false; it is one of the stable
	// codes from pkg/errors.
	ErrorCode string

	// RollbackError describes a failed restoration attempt after a failed
	// mutation. Both failures must be surfaced to the user; a non-empty
	// value here never appears with Success == true.
	RollbackError string
}

// SyncFailure records one binding that could not be reconciled.
type SyncFailure struct {
	Extension string
	Code      string
	Message   string
}

// SyncReport aggregates the per-binding outcomes of a bulk sync run.
type SyncReport struct {
	// Succeeded lists extensions whose OS default was (re)applied.
	Succeeded []string

	// Skipped lists extensions that already matched the OS and needed
	// no handler call.
	Skipped []string

	Failed []SyncFailure

	// DryRun marks a report produced without any OS mutation.
	DryRun bool
}

// PartialFailure reports whether some, but not necessarily all, items failed.
func (r *SyncReport) PartialFailure() bool {
	return len(r.Failed) > 0
}

// Total returns the number of bindings the sync run considered.
func (r *SyncReport) Total() int {
	return len(r.Succeeded) + len(r.Skipped) + len(r.Failed)
}
