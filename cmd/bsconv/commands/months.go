package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"onboarding/internal/calendar"
)

var monthNames = [12]string{
	"Baisakh", "Jestha", "Ashadh", "Shrawan", "Bhadra", "Ashwin",
	"Kartik", "Mangsir", "Poush", "Magh", "Falgun", "Chaitra",
}

type monthInfo struct {
	Month   int           `json:"month"`
	Name    string        `json:"name"`
	Days    int           `json:"days"`
	StartAD calendar.Date `json:"start_ad"`
}

func monthsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "months BS-YEAR",
		Short:   "List the months of a BS year with their lengths and AD start dates",
		Example: "  bsconv months 2080",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("year %q is not a number", args[0])
			}
			lengths, err := calendar.MonthLengths(year)
			if err != nil {
				return err
			}
			months := make([]monthInfo, 0, len(lengths))
			for i, days := range lengths {
				first, err := calendar.NewBS(year, i+1, 1)
				if err != nil {
					return err
				}
				start, err := calendar.ToAD(first)
				if err != nil {
					return err
				}
				months = append(months, monthInfo{Month: i + 1, Name: monthNames[i], Days: days, StartAD: start})
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), months)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MONTH\tNAME\tDAYS\tSTARTS (AD)")
			for _, m := range months {
				fmt.Fprintf(tw, "%02d\t%s\t%d\t%s\n", m.Month, m.Name, m.Days, m.StartAD)
			}
			return tw.Flush()
		},
	}
}
