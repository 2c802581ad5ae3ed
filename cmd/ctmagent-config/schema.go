package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sardine-ai/ctmagent-config/schema"
	"github.com/spf13/cobra"
)

func newSchemaCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Describe the supported settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := schema.Agent()
			switch format {
			case "table":
				return printSchema(cmd.OutOrStdout(), s)
			case "json":
				return printValue(cmd.OutOrStdout(), "json", s.JSONSchema())
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table or json")
	return cmd
}

func printSchema(w io.Writer, s *schema.Schema) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tTYPE\tDEFAULT\tCONSTRAINT\tLOCATION\tNOTES")
	for _, k := range s.Keys() {
		def := "-"
		switch {
		case k.ReadOnly:
		case k.DefaultFunc != nil:
			def = "(host)"
		default:
			def = fmt.Sprintf("%v", k.Default)
			if def == "" {
				def = `""`
			}
		}
		notes := ""
		switch {
		case k.ReadOnly:
			notes = "read-only"
		case k.RequiresRestart:
			notes = "restart"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", k.Name, k.Kind, def, k.Constraint(), k.Location, notes)
	}
	return tw.Flush()
}
