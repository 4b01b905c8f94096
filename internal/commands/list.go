package commands

import (
	"github.com/spf13/cobra"

	"lldpinventory/internal/codec"
)

func (a *app) listCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Discover neighbors and print the inventory",
		Long: `Discover neighbors and print the inventory.

Formats:
  json   ansible-inventory --list layout with _meta.hostvars (default)
  yaml   YAML inventory loadable by ansible's yaml plugin
  graph  group tree`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(cmd, a.v.GetString(keyOutputFormat))
		},
	}
	cmd.Flags().StringP("format", "f", "", "output format (json, yaml, graph)")
	_ = a.v.BindPFlag(keyOutputFormat, cmd.Flags().Lookup("format")) //nolint:errcheck
	return cmd
}

func (a *app) runList(cmd *cobra.Command, format string) error {
	exporter, err := codec.New(format)
	if err != nil {
		return err
	}

	res, err := a.discover(cmd)
	if err != nil {
		return err
	}
	return exporter.Export(res.Inventory.Snapshot(), cmd.OutOrStdout())
}
