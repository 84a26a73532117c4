package search

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/ahmednasr/restaurant-autocomplete/internal/models"
)

// State is where the controller sits between input events.
type State int

const (
	Idle State = iota
	Debouncing
	AwaitingResponse
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Debouncing:
		return "debouncing"
	case AwaitingResponse:
		return "awaiting-response"
	case Error:
		return "error"
	}
	return "unknown"
}

// Key identifies a key press the controller may act on.
type Key string

const (
	KeyTab   Key = "Tab"
	KeyEnter Key = "Enter"
)

const (
	DefaultDebounce = 300 * time.Millisecond
	DefaultLimit    = 10

	NotInitializedMessage = `Please initialize the data first (run "init")`
	FetchErrorMessage     = "Error fetching suggestions"
)

// Snapshot is an immutable copy of the controller's state.
type Snapshot struct {
	Query         string
	TopSuggestion string // inline completion hint; empty when none applies
	Suggestions   []models.Suggestion
	State         State
	Err           string // set only in the Error state

	// Version increases with every state change.
	Version uint64
}

// Settled reports whether no timer or request is outstanding.
func (s Snapshot) Settled() bool {
	return s.State == Idle || s.State == Error
}

// Completion returns the part of TopSuggestion that extends Query, which is what
// a terminal renders as ghost text after the cursor. Query and suggestion are
// matched rune by rune ignoring case, so a rune whose lower-case form has a
// different byte length still lines up.
func (s Snapshot) Completion() string {
	rest, _ := extends(s.TopSuggestion, s.Query)
	return rest
}

// extends reports whether name starts with query ignoring case and returns the
// remainder of name after it.
func extends(name, query string) (string, bool) {
	for _, q := range query {
		r, size := utf8.DecodeRuneInString(name)
		if size == 0 || unicode.ToLower(r) != unicode.ToLower(q) {
			return "", false
		}
		name = name[size:]
	}
	return name, true
}
