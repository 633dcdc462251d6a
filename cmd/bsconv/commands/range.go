package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"onboarding/internal/calendar"
)

func rangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "range",
		Short: "Print the dates covered by the embedded calendar table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := calendar.SupportedRange()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "table: %s\n", r.Version)
			fmt.Fprintf(out, "BS:    %s .. %s\n", r.FirstBS, r.LastBS)
			fmt.Fprintf(out, "AD:    %s .. %s\n", r.FirstAD, r.LastAD)
			return nil
		},
	}
}
