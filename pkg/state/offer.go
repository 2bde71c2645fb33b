package state

import (
	"github.com/dibs-cli/dibs/pkg/errors"
	"github.com/dibs-cli/dibs/pkg/types"
)

type offerTransition struct {
	from, to types.OfferState
}

// legalOfferTransitions is the closed set of moves an offer may make.
// Rejected is terminal: it has no outgoing transitions.
var legalOfferTransitions = map[offerTransition]bool{
	{types.OfferNone, types.OfferCreated}:     true,
	{types.OfferCreated, types.OfferActive}:   true,
	{types.OfferCreated, types.OfferRejected}: true,
	{types.OfferActive, types.OfferRejected}:  true,
}

// ValidateOfferTransition checks that moving the named offer from current to
// target is legal. Rejecting an active offer additionally consults inUse:
// an in-use active offer refuses rejection with a distinct condition even
// though active -> rejected is structurally legal. The inUse flag is a
// runtime guard layered on top of the static table, not part of it.
func ValidateOfferTransition(current, target types.OfferState, name string, inUse bool) error {
	if !legalOfferTransitions[offerTransition{current, target}] {
		return errors.Newf(errors.ErrInvalidTransition,
			"cannot move offer %q from %q to %q", name, current, target).
			WithDetail("from", string(current)).
			WithDetail("to", string(target))
	}

	if current == types.OfferActive && target == types.OfferRejected && inUse {
		return errors.Newf(errors.ErrOfferInUse,
			"offer %q is in use and cannot be rejected", name).
			WithHint("release the offer before rejecting it, or drop --in-use if this is stale")
	}

	return nil
}
