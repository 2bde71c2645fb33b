// Package syncer reconciles all active bindings with actual OS state in
// one bulk pass. Items are processed sequentially: error aggregation and
// rollback must not interleave across extensions that share the underlying
// resolution store.
package syncer

import (
	"context"
	"time"

	"github.com/dibs-cli/dibs/pkg/errors"
	"github.com/dibs-cli/dibs/pkg/logging"
	"github.com/dibs-cli/dibs/pkg/platform"
	"github.com/dibs-cli/dibs/pkg/rollback"
	"github.com/dibs-cli/dibs/pkg/state"
	"github.com/dibs-cli/dibs/pkg/types"
	"github.com/rs/zerolog"
)

// BindingStore is the slice of the persistence collaborator the
// orchestrator consumes. It never opens the underlying file itself.
type BindingStore interface {
	FindActive() ([]types.Binding, error)
	UpdateSyncFields(id string, osSynced bool, osSyncedAt *time.Time, previousOSDefault string) error
}

// Orchestrator drives the per-binding reconciliation loop.
type Orchestrator struct {
	handler platform.Handler
	coord   *rollback.Coordinator
	store   BindingStore
	logger  zerolog.Logger
}

func New(handler platform.Handler, store BindingStore) *Orchestrator {
	return &Orchestrator{
		handler: handler,
		coord:   rollback.New(handler),
		store:   store,
		logger:  logging.GetLogger("syncer"),
	}
}

// Sync reapplies every active binding whose OS default has drifted.
// One failing extension never aborts the rest; after the full pass a
// non-empty failure list surfaces as PARTIAL_SYNC. Cancellation is honored
// between items only, so no extension is left half-mutated; items already
// processed stay committed. Dry-run performs the same comparisons and
// reports intent without mutating the OS or the store, and never returns
// an error.
func (o *Orchestrator) Sync(ctx context.Context, dryRun bool) (*types.SyncReport, error) {
	bindings, err := o.store.FindActive()
	if err != nil {
		return nil, err
	}

	report := &types.SyncReport{DryRun: dryRun}

	for _, b := range bindings {
		if !state.SyncEligible(b.State) {
			continue
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, errors.Wrap(ctxErr, errors.ErrPlatformFailure, "sync canceled")
		}
		o.syncOne(ctx, b, dryRun, report)
	}

	if report.PartialFailure() && !dryRun {
		return report, errors.Newf(errors.ErrPartialSync,
			"%d of %d bindings failed to sync", len(report.Failed), report.Total()).
			WithDetail("succeeded", len(report.Succeeded)).
			WithDetail("skipped", len(report.Skipped)).
			WithDetail("failed", len(report.Failed)).
			WithHint("inspect the failures above and re-run 'dibs sync'")
	}
	return report, nil
}

func (o *Orchestrator) syncOne(ctx context.Context, b types.Binding, dryRun bool, report *types.SyncReport) {
	ext := types.NormalizeExtension(b.Extension)
	logger := o.logger.With().Str("ext", ext).Logger()

	current, _ := o.handler.GetCurrentDefault(ctx, ext)
	if matchesBinding(current, b) {
		logger.Debug().Str("current", current).Msg("already in sync")
		report.Skipped = append(report.Skipped, ext)
		if !dryRun && !b.OSSynced {
			now := time.Now().UTC()
			if err := o.store.UpdateSyncFields(b.ID, true, &now, b.PreviousOSDefault); err != nil {
				logger.Warn().Err(err).Msg("could not persist sync state")
			}
		}
		return
	}

	res, err := o.coord.SetDefault(ctx, ext, b.ApplicationPath, dryRun)
	if err != nil {
		logger.Error().Err(err).Msg("sync item failed")
		report.Failed = append(report.Failed, types.SyncFailure{
			Extension: ext,
			Code:      string(errors.CodeOf(err)),
			Message:   err.Error(),
		})
		return
	}

	report.Succeeded = append(report.Succeeded, ext)
	if dryRun {
		return
	}

	now := time.Now().UTC()
	if err := o.store.UpdateSyncFields(b.ID, true, &now, res.PreviousDefault); err != nil {
		logger.Warn().Err(err).Msg("handler applied but sync state not persisted")
	}
}

// matchesBinding reports whether the OS's current default already refers
// to the bound application, allowing for path-vs-identifier normalization.
// An unknown current default ("") never matches: unknown is not "no drift".
func matchesBinding(current string, b types.Binding) bool {
	if current == "" {
		return false
	}
	if current == b.ApplicationPath {
		return true
	}
	return b.BundleOrProgID != "" && current == b.BundleOrProgID
}
