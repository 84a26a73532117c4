package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

// AddCmd creates a restaurant record.
var AddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a restaurant",
	Long: `Add a restaurant to the store. If the index is built the name is
searchable immediately.

Examples:
  resto add "Pizza Planet" --rating 120`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var addRatingFlag int

func init() {
	AddCmd.Flags().IntVarP(&addRatingFlag, "rating", "r", 0, "User rating count")
}

func runAdd(cmd *cobra.Command, args []string) error {
	data := newCorpus()
	rep := data.AddRecord(cmd.Context(), strings.Join(args, " "), addRatingFlag)
	printReport(rep)
	if rep.Failed() {
		return ErrReported
	}
	return nil
}
