package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPresetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the available shape presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.cfg.PresetLibrary()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSEGMENTS\tPARTS\tSPAN\tINNER\tOUTER\tDEPTH\tDESCRIPTION")
			for _, name := range lib.Names() {
				p, _ := lib.Lookup(name)
				fmt.Fprintf(tw, "%s\t%d\t%d\t%g\t%g\t%g\t%g\t%s\n",
					p.Name, p.SegmentCount, p.TotalParts, p.SpanDegrees(),
					p.InnerRadius, p.OuterRadius, p.Depth, p.Description)
			}
			return tw.Flush()
		},
	}
}
