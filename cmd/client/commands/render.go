package commands

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/ahmednasr/restaurant-autocomplete/internal/corpus"
	"github.com/ahmednasr/restaurant-autocomplete/internal/search"
	"github.com/ahmednasr/restaurant-autocomplete/internal/status"
)

func printReport(r status.Report) {
	switch r.Kind {
	case status.Success:
		pterm.Success.Println(r.Message)
	case status.Failure:
		pterm.Error.Println(r.Message)
	case status.Pending:
		pterm.Info.Println(r.Message)
	}
}

// renderQuery prints the query with the top suggestion's remainder as ghost text.
func renderQuery(s search.Snapshot) {
	line := "> " + s.Query
	if rest := s.Completion(); rest != "" {
		line += pterm.Gray(rest) + pterm.Gray("  [tab]")
	}
	pterm.Println(line)
}

func renderSuggestions(s search.Snapshot) {
	if s.State == search.Error {
		pterm.Error.Println(s.Err)
		return
	}
	if len(s.Suggestions) == 0 {
		pterm.Info.Println("No suggestions")
		return
	}

	data := pterm.TableData{{"#", "Name", "Ratings", "Score"}}
	for i, sg := range s.Suggestions {
		name := sg.Name
		if i == 0 && sg.Name == s.TopSuggestion {
			name = pterm.LightCyan(name)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			name,
			strconv.Itoa(sg.RatingCount),
			fmt.Sprintf("%.2f", sg.Score),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderPage(s corpus.Snapshot) {
	p := s.Page
	if len(p.Items) == 0 {
		pterm.Info.Println("No restaurants")
	} else {
		data := pterm.TableData{{"#", "Name", "Ratings"}}
		for i, r := range p.Items {
			data = append(data, []string{
				strconv.Itoa(p.Offset() + i + 1),
				r.DisplayName,
				strconv.Itoa(r.UserRatingCount),
			})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}
	pterm.Println(pterm.Gray(fmt.Sprintf("Page %d of %d (%d restaurants, index %s)",
		p.Number, p.TotalPages(), p.Total, s.Status)))
}
