package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ahmednasr/restaurant-autocomplete/cmd/client/commands"
)

var (
	apiFlag     string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "resto",
	Short: "Restaurant name autocomplete client",
	Long: `resto - terminal client for the restaurant autocomplete service.

Available commands:
  init    - Build the server-side search index
  search  - Show suggestions for a name prefix
  list    - Page through stored restaurants
  add     - Add a restaurant
  repl    - Interactive search box and data panel

Examples:
  resto init
  resto search piz
  resto list --page 2
  resto add "Pizza Planet" --rating 120
  resto repl`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return commands.Setup(apiFlag, verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiFlag, "api", "", "API base URL (overrides API_BASE_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(commands.InitCmd)
	rootCmd.AddCommand(commands.SearchCmd)
	rootCmd.AddCommand(commands.ListCmd)
	rootCmd.AddCommand(commands.AddCmd)
	rootCmd.AddCommand(commands.ReplCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	commands.Sync()

	if err == nil {
		return
	}
	if !errors.Is(err, commands.ErrReported) {
		pterm.Error.Println(err.Error())
	}
	os.Exit(1)
}
