package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dibs-cli/dibs/pkg/style"
	"github.com/dibs-cli/dibs/pkg/syncer"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "sync",
		Short:   msgSyncShort,
		Long:    msgSyncLong,
		Example: msgSyncExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun := persistentBool(cmd, "dry-run")

			a, err := newApp(persistentString(cmd, "config"))
			if err != nil {
				return err
			}
			handler, err := a.handler()
			if err != nil {
				return err
			}

			report, syncErr := syncer.New(handler, a.store).Sync(cmd.Context(), dryRun)
			if report != nil {
				fmt.Fprint(cmd.OutOrStdout(), style.RenderSyncReport(report))
			}
			return syncErr
		},
	}
}
