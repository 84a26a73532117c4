// Package search implements the interaction state machine behind the
// restaurant search box: debounced dispatch, stale-response rejection, inline
// top-suggestion completion and keyboard acceptance.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ahmednasr/restaurant-autocomplete/internal/logger"
	"github.com/ahmednasr/restaurant-autocomplete/internal/models"
)

// Suggester fetches suggestions. It must not fail with an error; failures are
// reported through the response status. *apiclient.Client satisfies it.
type Suggester interface {
	Autocomplete(ctx context.Context, prefix string, limit int) models.AutocompleteResponse
}

// Gate tells whether searches may be dispatched. *corpus.Controller satisfies it.
type Gate interface {
	Ready() bool
}

// GateFunc adapts a function to Gate.
type GateFunc func() bool

func (f GateFunc) Ready() bool { return f() }

// AlwaysReady never blocks searches.
var AlwaysReady Gate = GateFunc(func() bool { return true })

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the quiet period before a query is sent.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithLimit sets how many suggestions are requested.
func WithLimit(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.limit = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = logger.OrNop(l) }
}

// WithOnChange registers fn to receive a Snapshot after every state change.
// Snapshots are delivered in Version order; an older one is never delivered
// after a newer one.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller owns the query text, the debounce timer, the suggestion list and
// the top-suggestion hint. All methods are safe for concurrent use.
type Controller struct {
	api      Suggester
	gate     Gate
	delay    time.Duration
	limit    int
	log      *zap.Logger
	onChange func(Snapshot)

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	query   string
	top     string
	items   []models.Suggestion
	state   State
	err     string
	timer   *time.Timer
	gen     uint64 // bumped on every Query mutation; work tagged with an older value is stale
	version uint64
	closed  bool

	notifyMu  sync.Mutex
	delivered uint64
}

// New returns an idle controller.
func New(api Suggester, gate Gate, opts ...Option) *Controller {
	if gate == nil {
		gate = AlwaysReady
	}
	c := &Controller{
		api:   api,
		gate:  gate,
		delay: DefaultDebounce,
		limit: DefaultLimit,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// Input handles a change of the input text.
func (c *Controller) Input(text string) {
	c.mu.Lock()
	c.query = text
	c.top = ""
	c.err = ""
	c.gen++
	c.stopTimerLocked()

	if strings.TrimSpace(text) == "" || c.closed {
		c.items = nil
		c.state = Idle
	} else {
		gen := c.gen
		c.timer = time.AfterFunc(c.delay, func() { c.fire(gen) })
		c.state = Debouncing
	}
	snap := c.commitLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Accept replaces the query with the chosen suggestion and closes the list.
func (c *Controller) Accept(item models.Suggestion) {
	c.mu.Lock()
	c.query = item.Name
	c.top = ""
	c.items = nil
	c.err = ""
	c.gen++
	c.stopTimerLocked()
	c.state = Idle
	snap := c.commitLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// AcceptIndex accepts the i-th suggestion of the current list.
func (c *Controller) AcceptIndex(i int) bool {
	c.mu.Lock()
	if i < 0 || i >= len(c.items) {
		c.mu.Unlock()
		return false
	}
	item := c.items[i]
	c.mu.Unlock()

	c.Accept(item)
	return true
}

// KeyPress handles a key. It returns true when the key was consumed and the
// input's default behaviour must be suppressed.
//
// Tab with a pending top suggestion completes the query to it locally; the
// suggestion list stays as it is and nothing is sent.
func (c *Controller) KeyPress(key Key) bool {
	c.mu.Lock()
	if key != KeyTab || c.top == "" {
		c.mu.Unlock()
		return false
	}
	c.query = c.top
	c.top = ""
	c.gen++
	c.stopTimerLocked()
	snap := c.commitLocked()
	c.mu.Unlock()

	c.notify(snap)
	return true
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Close stops the pending timer and abandons any in-flight request.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.gen++
	c.stopTimerLocked()
	c.mu.Unlock()
	c.cancel()
}

// fire runs when the debounce timer for generation gen expires.
func (c *Controller) fire(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		return
	}
	c.timer = nil

	if !c.gate.Ready() {
		c.state = Error
		c.err = NotInitializedMessage
		snap := c.commitLocked()
		c.mu.Unlock()
		c.notify(snap)
		return
	}

	query := c.query
	c.state = AwaitingResponse
	snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	c.log.Debug("dispatching autocomplete", zap.String("query", query), zap.Uint64("gen", gen))
	resp := c.api.Autocomplete(c.ctx, query, c.limit)
	c.apply(gen, query, resp)
}

// apply installs resp unless the query changed since it was requested.
func (c *Controller) apply(gen uint64, query string, resp models.AutocompleteResponse) {
	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		c.log.Debug("discarding stale autocomplete response",
			zap.String("query", query), zap.Uint64("gen", gen))
		return
	}

	if resp.Status.Failed() {
		c.state = Error
		c.err = FetchErrorMessage
		c.items = nil
	} else {
		c.items = append([]models.Suggestion(nil), resp.Suggestions...)
		c.top = topCompletion(query, c.items)
		c.state = Idle
	}
	snap := c.commitLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// topCompletion returns the first suggestion's name, in its own casing, when it
// case-insensitively extends query.
func topCompletion(query string, items []models.Suggestion) string {
	if len(items) == 0 {
		return ""
	}
	name := items[0].Name
	if _, ok := extends(name, query); ok {
		return name
	}
	return ""
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// commitLocked records a state change and returns the snapshot to publish.
func (c *Controller) commitLocked() Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	var items []models.Suggestion
	if len(c.items) > 0 {
		items = append([]models.Suggestion(nil), c.items...)
	}
	return Snapshot{
		Query:         c.query,
		TopSuggestion: c.top,
		Suggestions:   items,
		State:         c.state,
		Err:           c.err,
		Version:       c.version,
	}
}

func (c *Controller) notify(snap Snapshot) {
	if c.onChange == nil {
		return
	}
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if snap.Version <= c.delivered {
		return
	}
	c.delivered = snap.Version
	c.onChange(snap)
}
