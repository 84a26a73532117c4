// Package corpus drives the data-management side of the client: building the
// remote index, paging through the restaurant store and adding records.
//
// Page changes are explicit events. NextPage, PrevPage, GoTo and Refresh only
// record the requested page and wake the single fetch handler started by Start;
// the handler always fetches the most recently requested page and drops results
// that were overtaken by a newer request.
package corpus

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ahmednasr/restaurant-autocomplete/internal/logger"
	"github.com/ahmednasr/restaurant-autocomplete/internal/models"
	"github.com/ahmednasr/restaurant-autocomplete/internal/status"
)

// API is the subset of the network client the controller needs.
// *apiclient.Client satisfies it.
type API interface {
	Initialize(ctx context.Context) models.APIResponse
	ListRestaurants(ctx context.Context, limit, offset int) models.RestaurantListResponse
	AddRestaurant(ctx context.Context, name string, rating int) models.APIResponse
}

// Draft is the content of the add-restaurant form.
type Draft struct {
	Name   string
	Rating int
}

// Snapshot is an immutable copy of the controller's state.
type Snapshot struct {
	Status     Status
	Page       Page // last page that loaded successfully
	PageNumber int  // page most recently requested
	Loading    bool
	Draft      Draft

	InitReport status.Report
	AddReport  status.Report
	ListReport status.Report

	Version uint64
}

// Option configures a Controller.
type Option func(*Controller)

func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.log = logger.OrNop(l) }
}

// WithOnChange registers fn to receive a Snapshot after every state change,
// in Version order.
func WithOnChange(fn func(Snapshot)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// Controller owns the corpus status, the current page and the add form.
type Controller struct {
	api      API
	pageSize int
	log      *zap.Logger
	onChange func(Snapshot)

	kick chan struct{}
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu           sync.Mutex
	started      bool
	status       Status
	page         Page
	pageNumber   int
	pageGen      uint64 // generation of the latest page request
	settledGen   uint64 // newest generation whose fetch has completed
	claimedGen   uint64 // generation a synchronous LoadPage is fetching
	idle         chan struct{}
	initInFlight bool
	addInFlight  bool
	draft        Draft
	initReport   status.Report
	addReport    status.Report
	listReport   status.Report
	version      uint64

	notifyMu  sync.Mutex
	delivered uint64
}

// New returns a controller with an uninitialized corpus and an empty first page.
func New(api API, opts ...Option) *Controller {
	c := &Controller{
		api:        api,
		pageSize:   DefaultPageSize,
		log:        zap.NewNop(),
		kick:       make(chan struct{}, 1),
		pageNumber: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.page = Page{Number: 1, Size: c.pageSize}
	return c
}

// Start runs the page fetch handler until ctx is done or Close is called, and
// requests the first page.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	ctx, c.stop = context.WithCancel(ctx)
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run(ctx)
	c.Refresh()
}

// Close stops the fetch handler and waits for it to exit.
func (c *Controller) Close() {
	c.mu.Lock()
	stop := c.stop
	c.mu.Unlock()
	if stop != nil {
		stop()
	}
	c.wg.Wait()
}

// Ready reports whether searches may be dispatched.
func (c *Controller) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == Ready
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Initialize asks the service to build its index. A call made while another
// is still running is rejected without contacting the service.
func (c *Controller) Initialize(ctx context.Context) status.Report {
	c.mu.Lock()
	if c.initInFlight {
		c.mu.Unlock()
		return status.NewFailure(MsgInitInFlight)
	}
	c.initInFlight = true
	c.status = Initializing
	c.initReport = status.NewPending(MsgInitializing)
	snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	resp := c.api.Initialize(ctx)

	c.mu.Lock()
	c.initInFlight = false
	var rep status.Report
	if resp.Status.Succeeded() {
		c.status = Ready
		rep = status.NewSuccess(fmt.Sprintf("Success! Loaded %d restaurant names.", resp.Count))
		c.log.Info("corpus initialized", zap.Int("count", resp.Count))
	} else {
		c.status = Uninitialized
		rep = status.FailureOr(resp.Message, MsgInitFailed)
		c.log.Warn("corpus initialization failed", zap.String("message", resp.Message))
	}
	c.initReport = rep
	snap = c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	return rep
}

// AddRecord validates the form and creates the record. On success the form is
// reset and the current page is reloaded at its current number, which may not
// be the page the new record lands on.
func (c *Controller) AddRecord(ctx context.Context, name string, rating int) status.Report {
	c.mu.Lock()
	if c.addInFlight {
		c.mu.Unlock()
		return status.NewFailure(MsgAddInFlight)
	}
	c.draft = Draft{Name: name, Rating: rating}

	var rep status.Report
	switch {
	case strings.TrimSpace(name) == "":
		rep = status.NewFailure(MsgNameRequired)
	case rating < 0:
		rep = status.NewFailure(MsgRatingNegative)
	}
	if rep.Failed() {
		c.addReport = rep
		snap := c.commitLocked()
		c.mu.Unlock()
		c.notify(snap)
		return rep
	}

	c.addInFlight = true
	c.addReport = status.NewPending(MsgAdding)
	snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	resp := c.api.AddRestaurant(ctx, name, rating)

	c.mu.Lock()
	c.addInFlight = false
	reload := false
	if resp.Status.Succeeded() {
		rep = status.SuccessOr(resp.Message, MsgAdded)
		c.draft = Draft{}
		c.requestLocked(c.pageNumber)
		reload = true
	} else {
		rep = status.FailureOr(resp.Message, MsgAddFailed)
		c.log.Warn("add restaurant failed", zap.String("name", name), zap.String("message", resp.Message))
	}
	c.addReport = rep
	snap = c.commitLocked()
	c.mu.Unlock()

	if reload {
		c.wake()
	}
	c.notify(snap)
	return rep
}

// NextPage moves one page forward. It is a no-op on the last page.
func (c *Controller) NextPage() bool {
	c.mu.Lock()
	if c.pageNumber >= c.page.TotalPages() {
		c.mu.Unlock()
		return false
	}
	return c.changePageUnlock(c.pageNumber + 1)
}

// PrevPage moves one page back. It is a no-op on page 1.
func (c *Controller) PrevPage() bool {
	c.mu.Lock()
	if c.pageNumber <= 1 {
		c.mu.Unlock()
		return false
	}
	return c.changePageUnlock(c.pageNumber - 1)
}

// GoTo requests page n, clamped to [1, TotalPages].
func (c *Controller) GoTo(n int) {
	c.mu.Lock()
	c.changePageUnlock(clamp(n, c.page.TotalPages()))
}

// Refresh reloads the current page.
func (c *Controller) Refresh() {
	c.mu.Lock()
	c.changePageUnlock(c.pageNumber)
}

// changePageUnlock requests page n, releases c.mu and wakes the handler.
func (c *Controller) changePageUnlock(n int) bool {
	c.requestLocked(n)
	snap := c.commitLocked()
	c.mu.Unlock()

	c.wake()
	c.notify(snap)
	return true
}

// LoadPage fetches page n on the caller's goroutine. It supersedes any page
// request still queued for the handler.
func (c *Controller) LoadPage(ctx context.Context, n int) status.Report {
	c.mu.Lock()
	if n < 1 {
		n = 1
	}
	gen := c.requestLocked(n)
	c.claimedGen = gen
	snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	return c.load(ctx, n, gen)
}

// WaitIdle blocks until every requested page has been fetched or ctx is done.
func (c *Controller) WaitIdle(ctx context.Context) error {
	c.mu.Lock()
	ch := c.idle
	c.mu.Unlock()
	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the single page fetch handler.
func (c *Controller) run(ctx context.Context) {
	defer c.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.kick:
		}

		for ctx.Err() == nil {
			c.mu.Lock()
			n, gen := c.pageNumber, c.pageGen
			done := gen <= c.settledGen || gen == c.claimedGen
			c.mu.Unlock()
			if done {
				break
			}
			c.load(ctx, n, gen)
		}
	}
}

// load fetches page n for request generation gen and installs it unless a
// newer request was made meanwhile.
func (c *Controller) load(ctx context.Context, n int, gen uint64) status.Report {
	resp := c.api.ListRestaurants(ctx, c.pageSize, offset(n, c.pageSize))

	c.mu.Lock()
	if gen > c.settledGen {
		c.settledGen = gen
	}
	if gen != c.pageGen {
		c.settleLocked()
		c.mu.Unlock()
		c.log.Debug("discarding stale page", zap.Int("page", n), zap.Uint64("gen", gen))
		return status.Report{}
	}

	var rep status.Report
	if resp.Status.Failed() {
		rep = status.NewFailure(MsgLoadFailed)
		c.log.Warn("loading restaurants failed", zap.Int("page", n))
	} else {
		c.page = Page{
			Items:  append([]models.Restaurant(nil), resp.Restaurants...),
			Number: n,
			Size:   c.pageSize,
			Total:  resp.Total,
		}
		rep = status.NewSuccess(fmt.Sprintf("Page %d of %d", n, c.page.TotalPages()))
	}
	c.listReport = rep
	c.settleLocked()
	snap := c.commitLocked()
	c.mu.Unlock()
	c.notify(snap)

	return rep
}

// requestLocked records a request for page n and returns its generation.
func (c *Controller) requestLocked(n int) uint64 {
	c.pageNumber = n
	c.pageGen++
	if c.idle == nil {
		c.idle = make(chan struct{})
	}
	return c.pageGen
}

// settleLocked releases WaitIdle callers once the latest request has completed.
func (c *Controller) settleLocked() {
	if c.settledGen >= c.pageGen && c.idle != nil {
		close(c.idle)
		c.idle = nil
	}
}

func (c *Controller) wake() {
	select {
	case c.kick <- struct{}{}:
	default:
	}
}

func (c *Controller) commitLocked() Snapshot {
	c.version++
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	page := c.page
	if len(page.Items) > 0 {
		page.Items = append([]models.Restaurant(nil), page.Items...)
	}
	return Snapshot{
		Status:     c.status,
		Page:       page,
		PageNumber: c.pageNumber,
		Loading:    c.settledGen < c.pageGen,
		Draft:      c.draft,
		InitReport: c.initReport,
		AddReport:  c.addReport,
		ListReport: c.listReport,
		Version:    c.version,
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
