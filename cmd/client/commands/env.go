// Package commands holds the resto subcommands. Each one drives the same
// controllers the interactive session uses, so one-shot and interactive
// behaviour stay identical.
package commands

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ahmednasr/restaurant-autocomplete/internal/apiclient"
	"github.com/ahmednasr/restaurant-autocomplete/internal/config"
	"github.com/ahmednasr/restaurant-autocomplete/internal/corpus"
	"github.com/ahmednasr/restaurant-autocomplete/internal/logger"
	"github.com/ahmednasr/restaurant-autocomplete/internal/search"
)

// ErrReported is returned by a command that already printed its failure.
// main exits non-zero without printing it again.
var ErrReported = errors.New("failure already reported")

var (
	cfg config.Config
	log *zap.Logger
	api *apiclient.Client
)

// Setup loads configuration and builds the shared logger and API client.
// apiURL, when set, overrides the configured base URL.
func Setup(apiURL string, verbose bool) error {
	c, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load configuration")
	}
	if apiURL != "" {
		c.APIBaseURL = apiURL
	}

	level := c.LogLevel
	if verbose {
		level = "debug"
	}
	l, err := logger.New(level, c.LogJSON)
	if err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}

	cfg, log = c, l
	api = apiclient.New(cfg.APIBaseURL,
		apiclient.WithTimeout(cfg.RequestTimeout),
		apiclient.WithLogger(log.Named("api")))
	return nil
}

// Sync flushes the logger.
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func newCorpus(opts ...corpus.Option) *corpus.Controller {
	opts = append([]corpus.Option{
		corpus.WithPageSize(cfg.PageSize),
		corpus.WithLogger(log.Named("corpus")),
	}, opts...)
	return corpus.New(api, opts...)
}

func newSearch(gate search.Gate, opts ...search.Option) *search.Controller {
	opts = append([]search.Option{
		search.WithDebounce(cfg.Debounce),
		search.WithLimit(cfg.SuggestionLimit),
		search.WithLogger(log.Named("search")),
	}, opts...)
	return search.New(api, gate, opts...)
}
