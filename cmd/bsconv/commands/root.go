package commands

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

var asJSON bool

// Execute runs the bsconv command line.
func Execute() error {
	return NewRoot().Execute()
}

// NewRoot builds the command tree.
func NewRoot() *cobra.Command {
	root := &cobra.Command{
		Use:          "bsconv",
		Short:        "Convert dates between Bikram Sambat (BS) and Gregorian (AD)",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON instead of text")

	root.AddCommand(toADCmd(), toBSCmd(), monthsCmd(), rangeCmd())
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
