// Package state holds the lifecycle transition tables for bindings and
// offers. Validation is pure: nothing here touches the store or the OS.
package state

import (
	"github.com/dibs-cli/dibs/pkg/errors"
	"github.com/dibs-cli/dibs/pkg/types"
)

type bindingTransition struct {
	from, to types.BindingState
}

// legalBindingTransitions is the closed set of moves a binding may make.
var legalBindingTransitions = map[bindingTransition]bool{
	{types.BindingNone, types.BindingPending}:   true,
	{types.BindingNone, types.BindingActive}:    true,
	{types.BindingPending, types.BindingActive}: true,
	{types.BindingPending, types.BindingNone}:   true,
	{types.BindingActive, types.BindingRemoved}: true,
	{types.BindingRemoved, types.BindingActive}: true,
}

// ValidateBindingTransition checks that moving a binding for ext from
// current to target is legal. Each illegal case gets its own error code so
// callers and tests can tell them apart:
//
//   - none -> removed: there is nothing to remove
//   - active -> pending, active -> active: the binding already exists
//   - anything else not in the table: generic invalid transition
func ValidateBindingTransition(current, target types.BindingState, ext string) error {
	if legalBindingTransitions[bindingTransition{current, target}] {
		return nil
	}

	switch {
	case current == types.BindingNone && target == types.BindingRemoved:
		return errors.Newf(errors.ErrNothingToRemove,
			"no binding exists for .%s", types.NormalizeExtension(ext)).
			WithHint("use 'dibs set' to create one first")
	case current == types.BindingActive &&
		(target == types.BindingPending || target == types.BindingActive):
		return errors.Newf(errors.ErrAlreadyExists,
			"a binding for .%s is already active", types.NormalizeExtension(ext))
	default:
		return errors.Newf(errors.ErrInvalidTransition,
			"cannot move binding for .%s from %q to %q",
			types.NormalizeExtension(ext), current, target).
			WithDetail("from", string(current)).
			WithDetail("to", string(target))
	}
}

// SyncEligible reports whether a binding in the given state participates in
// bulk OS synchronization. Only active bindings do.
func SyncEligible(s types.BindingState) bool {
	return s == types.BindingActive
}
