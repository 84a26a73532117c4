package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ahmednasr/restaurant-autocomplete/internal/corpus"
)

// InitCmd builds the service's search index.
var InitCmd = &cobra.Command{
	Use:   "init",
	Short: "Build the server-side search index",
	Long: `Ask the restaurant service to (re)build its prefix index from the store.
Searches are refused by the service until this has run once.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	data := newCorpus()

	spinner, _ := pterm.DefaultSpinner.Start(corpus.MsgInitializing)
	rep := data.Initialize(cmd.Context())
	if spinner != nil {
		_ = spinner.Stop()
	}

	printReport(rep)
	if rep.Failed() {
		return ErrReported
	}
	return nil
}
