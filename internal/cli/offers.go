package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dibs-cli/dibs/pkg/errors"
	"github.com/dibs-cli/dibs/pkg/state"
	"github.com/dibs-cli/dibs/pkg/types"
)

func newOfferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offer",
		Short: msgOfferShort,
		Long:  msgOfferLong,
	}
	cmd.AddCommand(newOfferMakeCmd())
	cmd.AddCommand(newOfferAcceptCmd())
	cmd.AddCommand(newOfferRejectCmd())
	return cmd
}

func newOfferMakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "make NAME EXTENSION",
		Short: msgOfferMakeShort,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			ext := types.NormalizeExtension(args[1])

			a, err := newApp(persistentString(cmd, "config"))
			if err != nil {
				return err
			}

			binding, found, err := a.store.GetBinding(ext)
			if err != nil {
				return err
			}
			if !found {
				return errors.Newf(errors.ErrNotFound, "no binding exists for .%s", ext).
					WithHint("create one with 'dibs set' first")
			}

			current := types.OfferNone
			if existing, found, err := a.store.GetOffer(name); err != nil {
				return err
			} else if found {
				current = existing.State
			}
			if err := state.ValidateOfferTransition(current, types.OfferCreated, name, false); err != nil {
				return err
			}

			if _, err := a.store.CreateOffer(name, binding.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created offer %q for .%s\n", name, ext)
			return nil
		},
	}
}

func newOfferAcceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept NAME",
		Short: msgOfferAcceptShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			a, err := newApp(persistentString(cmd, "config"))
			if err != nil {
				return err
			}

			offer, found, err := a.store.GetOffer(name)
			if err != nil {
				return err
			}
			if !found {
				return errors.Newf(errors.ErrNotFound, "no offer named %q", name)
			}
			if err := state.ValidateOfferTransition(offer.State, types.OfferActive, name, false); err != nil {
				return err
			}

			if err := a.store.SetOfferState(offer.ID, types.OfferActive); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Accepted offer %q\n", name)
			return nil
		},
	}
}

func newOfferRejectCmd() *cobra.Command {
	var inUse bool

	cmd := &cobra.Command{
		Use:   "reject NAME",
		Short: msgOfferRejectShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			a, err := newApp(persistentString(cmd, "config"))
			if err != nil {
				return err
			}

			offer, found, err := a.store.GetOffer(name)
			if err != nil {
				return err
			}
			if !found {
				return errors.Newf(errors.ErrNotFound, "no offer named %q", name)
			}
			if err := state.ValidateOfferTransition(offer.State, types.OfferRejected, name, inUse); err != nil {
				return err
			}

			if err := a.store.SetOfferState(offer.ID, types.OfferRejected); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rejected offer %q\n", name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&inUse, "in-use", false, "Mark the offer as currently in use")
	return cmd
}
