// Package rollback wraps single handler mutations with capture/restore
// semantics: the OS default observed before the mutation is the binding's
// "previous" value regardless of the call's outcome, and a failed mutation
// gets at most one best-effort restoration of that value. No retry loop;
// oscillation is worse than a surfaced failure.
package rollback

import (
	"context"
	stderrors "errors"

	"github.com/dibs-cli/dibs/pkg/errors"
	"github.com/dibs-cli/dibs/pkg/logging"
	"github.com/dibs-cli/dibs/pkg/platform"
	"github.com/dibs-cli/dibs/pkg/types"
	"github.com/rs/zerolog"
)

// Coordinator runs one handler mutation at a time. It holds no mutable
// state and is safe to share, subject to the per-extension serialization
// the platform package requires.
type Coordinator struct {
	handler platform.Handler
	logger  zerolog.Logger
}

func New(handler platform.Handler) *Coordinator {
	return &Coordinator{
		handler: handler,
		logger:  logging.GetLogger("rollback"),
	}
}

// SetDefault applies a binding through the handler. On failure where the
// OS may have been partially mutated, the captured previous default is
// restored once; if the restore fails too, both failures are carried on
// the returned error and result.
func (c *Coordinator) SetDefault(ctx context.Context, ext, appPath string, dryRun bool) (types.OperationResult, error) {
	previous, _ := c.handler.GetCurrentDefault(ctx, ext)

	res, err := c.handler.SetDefault(ctx, ext, appPath, dryRun)
	if res.PreviousDefault == "" {
		res.PreviousDefault = previous
	}
	if err == nil || dryRun {
		return res, err
	}

	return c.recover(ctx, ext, previous, res, err)
}

// RemoveDefault mirrors SetDefault for the un-set direction.
func (c *Coordinator) RemoveDefault(ctx context.Context, ext string, dryRun bool) (types.OperationResult, error) {
	previous, _ := c.handler.GetCurrentDefault(ctx, ext)

	res, err := c.handler.RemoveDefault(ctx, ext, dryRun)
	if res.PreviousDefault == "" {
		res.PreviousDefault = previous
	}
	if err == nil || dryRun {
		return res, err
	}

	return c.recover(ctx, ext, previous, res, err)
}

// recover attempts the single restoration and folds a restore failure into
// the original error so callers surface both, never just one.
func (c *Coordinator) recover(ctx context.Context, ext, previous string, res types.OperationResult, opErr error) (types.OperationResult, error) {
	if !mayHaveMutated(opErr) {
		return res, opErr
	}

	c.logger.Warn().Str("ext", ext).Str("previous", previous).
		Msg("mutation failed; restoring previous default")

	rbErr := c.handler.RestoreDefault(ctx, ext, previous)
	if rbErr == nil {
		return res, opErr
	}

	c.logger.Error().Err(rbErr).Str("ext", ext).Msg("rollback failed")
	res.RollbackError = rbErr.Error()

	var dibsErr *errors.DibsError
	if stderrors.As(opErr, &dibsErr) {
		dibsErr.WithDetail("rollback_error", rbErr.Error())
		return res, dibsErr
	}
	return res, opErr
}

// mayHaveMutated reports whether a failed call could have left partial OS
// state behind. Validation failures (bad metadata, unusable application)
// reject before touching the OS and need no restore.
func mayHaveMutated(err error) bool {
	switch errors.CodeOf(err) {
	case errors.ErrPlatformFailure, errors.ErrAccessDenied:
		return true
	default:
		return false
	}
}
