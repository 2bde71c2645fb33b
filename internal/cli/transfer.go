package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dibs-cli/dibs/pkg/assoc"
	"github.com/dibs-cli/dibs/pkg/errors"
	"github.com/dibs-cli/dibs/pkg/types"
)

func newExportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: msgExportShort,
		Long:  msgExportLong,
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

			switch format {
			case "xml":
				return assoc.Export(cmd.OutOrStdout(), bindings)
			case "yaml":
				return yaml.NewEncoder(cmd.OutOrStdout()).Encode(bindings)
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(bindings)
			default:
				return errors.Newf(errors.ErrInvalidInput, "unknown export format %q", format).
					WithHint("valid formats are xml, yaml and json")
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "xml", "Output format: xml, yaml or json")
	return cmd
}

func newImportAssocCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-assoc FILE",
		Short: msgImportShort,
		Long:  msgImportLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(persistentString(cmd, "config"))
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrapf(err, errors.ErrInvalidInput, "cannot open %s", args[0])
			}
			defer func() { _ = f.Close() }()

			associations, err := assoc.Parse(f)
			if err != nil {
				return err
			}

			created, skipped := 0, 0
			for _, as := range associations {
				ext := types.NormalizeExtension(as.Extension)
				_, found, err := a.store.GetBinding(ext)
				if err != nil {
					return err
				}
				if found {
					skipped++
					continue
				}

				info := types.AppInfo{
					Name:           as.AppName,
					BundleOrProgID: as.ProgID,
				}
				if _, err := a.store.CreateBinding(ext, info, types.BindingPending); err != nil {
					return err
				}
				created++
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d associations (%d already present)\n", created, skipped)
			if created > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Point them at applications with 'dibs set', then run 'dibs sync'.")
			}
			return nil
		},
	}
}
