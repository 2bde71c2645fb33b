// Package platform translates extension-to-application bindings into
// OS-specific default-handler mutations. macOS and Windows resolve file
// types through structurally different subsystems (Launch Services type
// identifiers vs. registry ProgIDs); Handler hides both behind one
// contract. Handlers are obtained through GetHandler and are safe to share
// across goroutines as long as operations on the same extension are
// serialized by the caller.
package platform

import (
	"context"

	"github.com/dibs-cli/dibs/pkg/types"
)

// Handler is the per-platform capability set for default-handler
// integration. Implementations must not retain mutable state across calls.
type Handler interface {
	// VerifyApplication resolves a user-supplied path to platform-usable
	// metadata. Partially unavailable metadata is reported as empty
	// AppInfo fields, not as an error; only a nonexistent or plainly
	// unusable path fails (INVALID_APPLICATION).
	VerifyApplication(ctx context.Context, path string) (types.AppInfo, error)

	// GetCurrentDefault is a best-effort query of what the OS currently
	// resolves as the default for ext. An empty string means "unknown"
	// (e.g. the query helper is not installed), never "no default".
	GetCurrentDefault(ctx context.Context, ext string) (string, error)

	// SetDefault makes appPath the OS default for ext. Under dryRun it
	// reports the intended change, with PreviousDefault populated, and
	// mutates nothing. The returned error is non-nil exactly when the
	// result's Success is false, and always carries one of the stable
	// codes from pkg/errors.
	SetDefault(ctx context.Context, ext, appPath string, dryRun bool) (types.OperationResult, error)

	// RemoveDefault un-sets the binding for ext in the platform's terms:
	// macOS resets to the OS-wide handler for the type identifier,
	// Windows deletes the ProgID association dibs created. Idempotent:
	// removing an unset default succeeds with a no-op message.
	RemoveDefault(ctx context.Context, ext string, dryRun bool) (types.OperationResult, error)

	// RestoreDefault best-effort reapplies a default previously observed
	// through GetCurrentDefault. The rollback coordinator calls this at
	// most once after a failed mutation; a restore of "" is a no-op.
	RestoreDefault(ctx context.Context, ext, previous string) error
}
