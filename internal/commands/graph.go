package commands

import (
	"github.com/spf13/cobra"

	"lldpinventory/internal/codec"
)

func (a *app) graphCommand() *cobra.Command {
	var vars bool

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the group tree of the discovered inventory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.discover(cmd)
			if err != nil {
				return err
			}
			g := &codec.GraphCodec{Vars: vars}
			return g.Export(res.Inventory.Snapshot(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&vars, "vars", false, "include host variables")
	return cmd
}
