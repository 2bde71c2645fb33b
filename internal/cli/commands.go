// Package cli assembles the dibs command tree.
package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dibs-cli/dibs/internal/version"
	"github.com/dibs-cli/dibs/pkg/config"
	"github.com/dibs-cli/dibs/pkg/docs"
	"github.com/dibs-cli/dibs/pkg/logging"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity  int
		dryRun     bool
		configPath string
	)

	rootCmd := &cobra.Command{
		Use:     "dibs",
		Short:   msgRootShort,
		Long:    msgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Preview changes without executing them")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default is XDG config dir / dibs)")

	rootCmd.AddCommand(newSetCmd())
	rootCmd.AddCommand(newForgetCmd())
	rootCmd.AddCommand(newSlapCmd())
	rootCmd.AddCommand(newChopCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newOfferCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newImportAssocCmd())
	rootCmd.AddCommand(newGenconfigCmd())
	rootCmd.AddCommand(newDocsCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// persistentString reads a persistent string flag from the root.
func persistentString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Root().PersistentFlags().GetString(name)
	return v
}

// persistentBool reads a persistent bool flag from the root.
func persistentBool(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Root().PersistentFlags().GetBool(name)
	return v
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: msgVersionShort,
		Long:  `Print detailed version information including commit hash and build date`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dibs version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Built:  %s\n", version.Date)
			}
		},
	}
}

func newGenconfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genconfig",
		Short: msgGenconfigShort,
		Long:  `Print the default configuration file with every key documented.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.WriteDefault(cmd.OutOrStdout())
		},
	}
}

func newDocsCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "docs [topic]",
		Short:     msgDocsShort,
		Long:      msgDocsLong,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: docs.List(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Available topics:")
				for _, name := range docs.List() {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
				}
				return nil
			}

			topic, err := docs.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), docs.NewRenderer().Render(topic.Content))
			return nil
		},
	}
}
