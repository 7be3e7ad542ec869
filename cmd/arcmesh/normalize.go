package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/holodemo/arcmesh/pkg/ringseg"
)

func newNormalizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize SEGMENTS [MIN_PARTS]",
		Short: "Print the part count to use for a segment count",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			segments, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("segments: %w", err)
			}
			minimum := ringseg.MinParts
			if len(args) == 2 {
				if minimum, err = strconv.Atoi(args[1]); err != nil {
					return fmt.Errorf("min parts: %w", err)
				}
			}
			parts, err := ringseg.NormalizeParts(segments, minimum)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), parts)
			return err
		},
	}
}
