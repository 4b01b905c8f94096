package commands

import (
	"github.com/spf13/cobra"

	"lldpinventory/internal/codec"
)

func (a *app) hostCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "host <name>",
		Short: "Print the variables of one discovered host as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHost(cmd, args[0])
		},
	}
}

func (a *app) runHost(cmd *cobra.Command, name string) error {
	res, err := a.discover(cmd)
	if err != nil {
		return err
	}
	return codec.NewJSONCodec().ExportHost(res.Inventory.Snapshot(), name, cmd.OutOrStdout())
}
