package commands

import (
	"bufio"
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ahmednasr/restaurant-autocomplete/internal/corpus"
	"github.com/ahmednasr/restaurant-autocomplete/internal/search"
)

const replHelp = `Start an interactive session. Any line that does not start with ':' is
typed into the search box. Commands:

  :tab            accept the inline completion
  :pick N         accept suggestion N
  :init           build the search index
  :list           show the current page
  :next / :prev   move one page
  :page N         jump to page N
  :refresh        reload the current page
  :add NAME | N   add a restaurant with N ratings
  :help           show this text
  :quit           leave`

// ReplCmd is the interactive session: a search box plus the data panel.
var ReplCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive search and data management",
	Long:  replHelp,
	Args:  cobra.NoArgs,
	RunE:  runRepl,
}

// replCommand is one parsed input line.
type replCommand struct {
	name string // "" for search input
	arg  string
}

func parseLine(line string) replCommand {
	if !strings.HasPrefix(line, ":") {
		return replCommand{arg: line}
	}
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	return replCommand{name: strings.ToLower(name), arg: strings.TrimSpace(arg)}
}

// parseAdd splits "NAME | N". A missing count is zero.
func parseAdd(arg string) (string, int, error) {
	name, count, found := strings.Cut(arg, "|")
	name = strings.TrimSpace(name)
	if !found {
		return name, 0, nil
	}
	count = strings.TrimSpace(count)
	if count == "" {
		return name, 0, nil
	}
	n, err := strconv.Atoi(count)
	if err != nil {
		return "", 0, errors.Newf("rating count %q is not a number", count)
	}
	return name, n, nil
}

type session struct {
	data    *corpus.Controller
	box     *search.Controller
	settled chan search.Snapshot
}

func runRepl(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s := &session{settled: make(chan search.Snapshot, 16)}
	s.data = newCorpus()
	s.data.Start(ctx)
	defer s.data.Close()

	s.box = newSearch(s.data, search.WithOnChange(func(snap search.Snapshot) {
		if snap.Settled() {
			select {
			case s.settled <- snap:
			default:
			}
		}
	}))
	defer s.box.Close()

	pterm.DefaultHeader.WithFullWidth().Println("Restaurant search")
	pterm.Info.Println(`Type a name to search, ":help" for commands.`)
	if err := s.data.WaitIdle(ctx); err == nil {
		renderPage(s.data.Snapshot())
	}

	in := bufio.NewScanner(cmd.InOrStdin())
	for {
		pterm.Print(pterm.LightMagenta("resto> "))
		if !in.Scan() {
			pterm.Println()
			return in.Err()
		}
		if quit := s.handle(ctx, parseLine(in.Text())); quit {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// handle runs one command. It reports whether the session should end.
func (s *session) handle(ctx context.Context, c replCommand) bool {
	switch c.name {
	case "":
		s.search(ctx, c.arg)
	case "tab":
		if s.box.KeyPress(search.KeyTab) {
			renderQuery(s.box.Snapshot())
		} else {
			pterm.Warning.Println("No completion available")
		}
	case "pick":
		n, err := strconv.Atoi(c.arg)
		if err != nil || !s.box.AcceptIndex(n-1) {
			pterm.Warning.Println("No such suggestion")
			return false
		}
		renderQuery(s.box.Snapshot())
	case "init":
		spinner, _ := pterm.DefaultSpinner.Start(corpus.MsgInitializing)
		rep := s.data.Initialize(ctx)
		if spinner != nil {
			_ = spinner.Stop()
		}
		printReport(rep)
	case "list":
		renderPage(s.data.Snapshot())
	case "next":
		if !s.data.NextPage() {
			pterm.Warning.Println("Already on the last page")
			return false
		}
		s.showPage(ctx)
	case "prev":
		if !s.data.PrevPage() {
			pterm.Warning.Println("Already on the first page")
			return false
		}
		s.showPage(ctx)
	case "page":
		n, err := strconv.Atoi(c.arg)
		if err != nil {
			pterm.Warning.Println("Usage: :page N")
			return false
		}
		s.data.GoTo(n)
		s.showPage(ctx)
	case "refresh":
		s.data.Refresh()
		s.showPage(ctx)
	case "add":
		name, rating, err := parseAdd(c.arg)
		if err != nil {
			pterm.Warning.Println(err.Error())
			return false
		}
		printReport(s.data.AddRecord(ctx, name, rating))
		s.showPage(ctx)
	case "help":
		pterm.Println(replHelp)
	case "quit", "q", "exit":
		return true
	default:
		pterm.Warning.Printfln("Unknown command :%s (try :help)", c.name)
	}
	return false
}

// search types text into the box and renders the outcome once it settles.
func (s *session) search(ctx context.Context, text string) {
	for len(s.settled) > 0 {
		<-s.settled
	}
	s.box.Input(text)
	if strings.TrimSpace(text) == "" {
		return
	}

	wait := time.NewTimer(cfg.Debounce + cfg.RequestTimeout + time.Second)
	defer wait.Stop()
	for {
		select {
		case snap := <-s.settled:
			if snap.Query != text {
				continue
			}
			renderQuery(snap)
			renderSuggestions(snap)
			return
		case <-wait.C:
			pterm.Warning.Println("Still waiting for suggestions")
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *session) showPage(ctx context.Context) {
	if err := s.data.WaitIdle(ctx); err != nil {
		return
	}
	snap := s.data.Snapshot()
	if snap.ListReport.Failed() {
		printReport(snap.ListReport)
	}
	renderPage(snap)
}
