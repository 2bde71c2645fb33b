package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dibs-cli/dibs/pkg/state"
	"github.com/dibs-cli/dibs/pkg/style"
	"github.com/dibs-cli/dibs/pkg/types"
)

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "set EXTENSION APPLICATION",
		Short:   msgSetShort,
		Long:    msgSetLong,
		Example: msgSetExample,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd, args[0], args[1])
		},
	}
}

func newForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "forget EXTENSION",
		Short:   msgForgetShort,
		Long:    msgForgetLong,
		Example: msgForgetExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForget(cmd, args[0])
		},
	}
}

// slap and chop are the spellings dibs shipped with before set/forget.
// They stay as hidden aliases so old scripts keep working.

func newSlapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "slap --set EXTENSION APPLICATION",
		Short:  msgSlapShort,
		Long:   msgSlapLong,
		Hidden: true,
		Args:   cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(cmd, args[0], args[1])
		},
	}
	cmd.Flags().Bool("set", false, "Required; confirms the set operation")
	_ = cmd.MarkFlagRequired("set")
	return cmd
}

func newChopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "chop --forget EXTENSION",
		Short:  msgChopShort,
		Long:   msgChopLong,
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runForget(cmd, args[0])
		},
	}
	cmd.Flags().Bool("forget", false, "Required; confirms the forget operation")
	_ = cmd.MarkFlagRequired("forget")
	return cmd
}

func runSet(cmd *cobra.Command, rawExt, appPath string) error {
	ext := types.NormalizeExtension(rawExt)
	dryRun := persistentBool(cmd, "dry-run")

	a, err := newApp(persistentString(cmd, "config"))
	if err != nil {
		return err
	}

	existing, found, err := a.store.GetBinding(ext)
	if err != nil {
		return err
	}
	current := types.BindingNone
	if found {
		current = existing.State
	}
	if err := state.ValidateBindingTransition(current, types.BindingActive, ext); err != nil {
		return err
	}

	handler, err := a.handler()
	if err != nil {
		return err
	}
	info, err := handler.VerifyApplication(cmd.Context(), appPath)
	if err != nil {
		return err
	}

	a.logger.Info().
		Str("extension", ext).
		Str("application", info.Path).
		Bool("dry_run", dryRun).
		Msg("Setting binding")

	var binding types.Binding
	if !dryRun {
		if found {
			binding, err = a.store.UpdateBindingApplication(existing.ID, info, types.BindingActive)
		} else {
			binding, err = a.store.CreateBinding(ext, info, types.BindingActive)
		}
		if err != nil {
			return err
		}
	}

	coord, err := a.coordinator()
	if err != nil {
		return err
	}
	res, opErr := coord.SetDefault(cmd.Context(), ext, info.Path, dryRun)
	if opErr != nil {
		// The binding is recorded; the OS just did not take it yet.
		fmt.Fprint(cmd.ErrOrStderr(), style.RenderWarning(
			fmt.Sprintf("binding recorded, but applying it failed: %v", opErr)))
		fmt.Fprintln(cmd.ErrOrStderr(), "Run 'dibs sync' to retry.")
		return nil
	}

	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Would bind .%s to %s\n", ext, info.Path)
		return nil
	}

	now := time.Now().UTC()
	if err := a.store.UpdateSyncFields(binding.ID, true, &now, res.PreviousDefault); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Bound .%s to %s\n", ext, style.Bold(info.Name))
	return nil
}

func runForget(cmd *cobra.Command, rawExt string) error {
	ext := types.NormalizeExtension(rawExt)
	dryRun := persistentBool(cmd, "dry-run")

	a, err := newApp(persistentString(cmd, "config"))
	if err != nil {
		return err
	}

	existing, found, err := a.store.GetBinding(ext)
	if err != nil {
		return err
	}
	current := types.BindingNone
	if found {
		current = existing.State
	}

	// A pending binding never reached the OS; forgetting it just
	// retracts the record.
	target := types.BindingRemoved
	if current == types.BindingPending {
		target = types.BindingNone
	}
	if err := state.ValidateBindingTransition(current, target, ext); err != nil {
		return err
	}

	a.logger.Info().
		Str("extension", ext).
		Bool("dry_run", dryRun).
		Msg("Forgetting binding")

	if current == types.BindingActive {
		coord, err := a.coordinator()
		if err != nil {
			return err
		}
		if _, opErr := coord.RemoveDefault(cmd.Context(), ext, dryRun); opErr != nil {
			fmt.Fprint(cmd.ErrOrStderr(), style.RenderWarning(
				fmt.Sprintf("could not restore the OS default: %v", opErr)))
		}
	}

	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Would forget .%s\n", ext)
		return nil
	}

	if err := a.store.SetBindingState(existing.ID, target); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Forgot .%s\n", ext)
	return nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: msgStatusShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(persistentString(cmd, "config"))
			if err != nil {
				return err
			}

			bindings, err := a.store.ListBindings()
			if err != nil {
				return err
			}

			// Current OS defaults are decoration; status still works
			// where no handler is available.
			defaults := make(map[string]string)
			if handler, err := a.handler(); err == nil {
				for _, b := range bindings {
					ext := types.NormalizeExtension(b.Extension)
					if current, err := handler.GetCurrentDefault(cmd.Context(), ext); err == nil {
						defaults[ext] = current
					}
				}
			}

			fmt.Fprint(cmd.OutOrStdout(), style.RenderBindings(bindings, defaults))
			return nil
		},
	}
}
