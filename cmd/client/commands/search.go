package commands

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ahmednasr/restaurant-autocomplete/internal/search"
)

// SearchCmd runs one autocomplete query and prints the suggestions.
var SearchCmd = &cobra.Command{
	Use:   "search <prefix>",
	Short: "Show suggestions for a name prefix",
	Long: `Show the suggestions the service returns for a name prefix, most rated
first. The first suggestion is shown as an inline completion when it extends
the prefix.

Examples:
  resto search piz
  resto search --init "joe's"    # build the index first`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var (
	searchInitFlag  bool
	searchLimitFlag int
)

func init() {
	SearchCmd.Flags().BoolVar(&searchInitFlag, "init", false, "Build the index before searching")
	SearchCmd.Flags().IntVar(&searchLimitFlag, "limit", 0, "Number of suggestions (default from config)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	prefix := strings.Join(args, " ")
	if strings.TrimSpace(prefix) == "" {
		return errors.New("prefix must not be blank")
	}

	gate := search.AlwaysReady
	if searchInitFlag {
		data := newCorpus()
		rep := data.Initialize(ctx)
		printReport(rep)
		if rep.Failed() {
			return ErrReported
		}
		gate = data
	}

	settled := make(chan search.Snapshot, 1)
	// A single query has nothing to coalesce.
	box := newSearch(gate,
		search.WithDebounce(time.Millisecond),
		search.WithLimit(searchLimitFlag),
		search.WithOnChange(func(s search.Snapshot) {
			if s.Settled() {
				select {
				case settled <- s:
				default:
				}
			}
		}))
	defer box.Close()

	box.Input(prefix)

	select {
	case s := <-settled:
		renderQuery(s)
		renderSuggestions(s)
		if s.State == search.Error {
			return ErrReported
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
