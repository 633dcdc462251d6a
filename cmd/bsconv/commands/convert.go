package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"onboarding/internal/calendar"
)

type conversion struct {
	Input        calendar.Date `json:"input"`
	Result       calendar.Date `json:"result"`
	TableVersion string        `json:"table_version"`
}

func toADCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "to-ad YYYY-MM-DD",
		Short:   "Convert a BS date to AD",
		Example: "  bsconv to-ad 2080-01-15",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return convert(cmd, calendar.BS, args[0])
		},
	}
}

func toBSCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "to-bs YYYY-MM-DD",
		Short:   "Convert an AD date to BS",
		Example: "  bsconv to-bs 2023-04-28",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return convert(cmd, calendar.AD, args[0])
		},
	}
}

func convert(cmd *cobra.Command, from calendar.Calendar, raw string) error {
	in, err := calendar.Parse(from, raw)
	if err != nil {
		return fmt.Errorf("%s date %q: %w", from, raw, err)
	}
	out, err := calendar.Convert(in)
	if err != nil {
		return fmt.Errorf("convert %s: %w", in, err)
	}
	if asJSON {
		return writeJSON(cmd.OutOrStdout(), conversion{Input: in, Result: out, TableVersion: calendar.TableVersion()})
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s = %s %s\n", in, in.Calendar(), out, out.Calendar())
	return err
}
