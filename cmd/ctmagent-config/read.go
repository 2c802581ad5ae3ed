package main

import (
	"github.com/spf13/cobra"
)

func newReadCommand(o *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "read",
		Short: "Print the current agent configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := o.manager()
			if err != nil {
				return err
			}
			snapshot, err := m.Read()
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), format, snapshot)
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	return cmd
}
