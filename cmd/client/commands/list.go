package commands

import (
	"github.com/spf13/cobra"
)

// ListCmd prints one page of the restaurant store.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored restaurants one page at a time",
	Long: `List stored restaurants one page at a time. Page size comes from PAGE_SIZE.

Examples:
  resto list
  resto list --page 3`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var listPageFlag int

func init() {
	ListCmd.Flags().IntVarP(&listPageFlag, "page", "p", 1, "Page number (1-based)")
}

func runList(cmd *cobra.Command, args []string) error {
	data := newCorpus()
	rep := data.LoadPage(cmd.Context(), listPageFlag)
	if rep.Failed() {
		printReport(rep)
		return ErrReported
	}
	renderPage(data.Snapshot())
	return nil
}
