package corpus

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmednasr/restaurant-autocomplete/internal/models"
	"github.com/ahmednasr/restaurant-autocomplete/internal/status"
)

type fakeAPI struct {
	mu        sync.Mutex
	total     int
	listFail  bool
	initResp  models.APIResponse
	addResp   models.APIResponse
	initHold  chan struct{}
	listHolds map[int]chan struct{} // keyed by offset

	initCalls int
	addCalls  []models.AddRestaurantRequest
	offsets   []int
}

func newFakeAPI(total int) *fakeAPI {
	return &fakeAPI{
		total:     total,
		initResp:  models.APIResponse{Status: models.StatusSuccess, Count: total},
		addResp:   models.APIResponse{Status: models.StatusSuccess},
		listHolds: map[int]chan struct{}{},
	}
}

func (f *fakeAPI) Initialize(ctx context.Context) models.APIResponse {
	f.mu.Lock()
	f.initCalls++
	hold, resp := f.initHold, f.initResp
	f.mu.Unlock()
	if hold != nil {
		<-hold
	}
	return resp
}

func (f *fakeAPI) ListRestaurants(ctx context.Context, limit, offset int) models.RestaurantListResponse {
	f.mu.Lock()
	f.offsets = append(f.offsets, offset)
	hold, fail, total := f.listHolds[offset], f.listFail, f.total
	f.mu.Unlock()
	if hold != nil {
		<-hold
	}
	if fail {
		return models.RestaurantListResponse{Restaurants: []models.Restaurant{}, Status: models.StatusError}
	}

	var items []models.Restaurant
	for i := offset; i < offset+limit && i < total; i++ {
		items = append(items, models.Restaurant{DisplayName: fmt.Sprintf("restaurant %d", i+1), UserRatingCount: i})
	}
	return models.RestaurantListResponse{Restaurants: items, Total: total}
}

func (f *fakeAPI) AddRestaurant(ctx context.Context, name string, rating int) models.APIResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCalls = append(f.addCalls, models.AddRestaurantRequest{Name: name, Rating: rating})
	return f.addResp
}

func (f *fakeAPI) Offsets() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.offsets...)
}

func (f *fakeAPI) set(fn func(f *fakeAPI)) {
	f.mu.Lock()
	fn(f)
	f.mu.Unlock()
}

func waitIdle(t *testing.T, c *Controller) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.WaitIdle(ctx))
	return c.Snapshot()
}

func startedController(t *testing.T, api API, opts ...Option) *Controller {
	t.Helper()
	c := New(api, opts...)
	c.Start(context.Background())
	t.Cleanup(c.Close)
	waitIdle(t, c)
	return c
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{45, 20, 3},
		{40, 20, 2},
		{1, 20, 1},
		{0, 20, 1},
		{10, 0, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Page{Total: tt.total, Size: tt.size}.TotalPages(), "%+v", tt)
	}
	assert.Equal(t, 40, Page{Number: 3, Size: 20}.Offset())
}

func TestStartLoadsFirstPage(t *testing.T) {
	api := newFakeAPI(45)
	c := startedController(t, api)

	snap := c.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, 1, snap.Page.Number)
	assert.Len(t, snap.Page.Items, DefaultPageSize)
	assert.Equal(t, 45, snap.Page.Total)
	assert.Equal(t, status.NewSuccess("Page 1 of 3"), snap.ListReport)
	assert.Equal(t, []int{0}, api.Offsets())
	assert.Equal(t, Uninitialized, snap.Status)
}

func TestPaginationBounds(t *testing.T) {
	api := newFakeAPI(45)
	c := startedController(t, api)

	assert.False(t, c.PrevPage(), "page 1 has no predecessor")

	require.True(t, c.NextPage())
	assert.Equal(t, 2, waitIdle(t, c).Page.Number)

	require.True(t, c.NextPage())
	snap := waitIdle(t, c)
	assert.Equal(t, 3, snap.Page.Number)
	assert.Len(t, snap.Page.Items, 5)

	assert.False(t, c.NextPage(), "page 3 of 3 is the last")
	assert.Equal(t, 3, c.Snapshot().PageNumber)
	assert.Equal(t, []int{0, 20, 40}, api.Offsets())

	require.True(t, c.PrevPage())
	assert.Equal(t, 2, waitIdle(t, c).Page.Number)
}

func TestGoToClamps(t *testing.T) {
	api := newFakeAPI(45)
	c := startedController(t, api)

	c.GoTo(10)
	assert.Equal(t, 3, waitIdle(t, c).Page.Number)

	c.GoTo(-4)
	assert.Equal(t, 1, waitIdle(t, c).Page.Number)
}

func TestCustomPageSize(t *testing.T) {
	api := newFakeAPI(45)
	c := startedController(t, api, WithPageSize(10))

	assert.Equal(t, 5, c.Snapshot().Page.TotalPages())
	c.GoTo(5)
	snap := waitIdle(t, c)
	assert.Len(t, snap.Page.Items, 5)
	assert.Equal(t, []int{0, 40}, api.Offsets())
}

func TestOverlappingPageLoadsLastRequestWins(t *testing.T) {
	api := newFakeAPI(45)

	var mu sync.Mutex
	var installed []int
	c := startedController(t, api, WithOnChange(func(s Snapshot) {
		mu.Lock()
		installed = append(installed, s.Page.Number)
		mu.Unlock()
	}))

	release := make(chan struct{})
	api.set(func(f *fakeAPI) { f.listHolds[20] = release })

	require.True(t, c.NextPage())
	require.Eventually(t, func() bool {
		offs := api.Offsets()
		return offs[len(offs)-1] == 20
	}, time.Second, 2*time.Millisecond)

	// Page 2 is still in flight; the bounds come from page 1's total.
	require.True(t, c.NextPage())
	assert.True(t, c.Snapshot().Loading)
	close(release)

	snap := waitIdle(t, c)
	assert.Equal(t, 3, snap.Page.Number)
	assert.Equal(t, 3, snap.PageNumber)

	mu.Lock()
	defer mu.Unlock()
	assert.NotContains(t, installed, 2, "overtaken page must never be shown")
}

func TestLoadFailureKeepsPreviousPage(t *testing.T) {
	api := newFakeAPI(45)
	c := startedController(t, api)

	api.set(func(f *fakeAPI) { f.listFail = true })
	require.True(t, c.NextPage())
	snap := waitIdle(t, c)

	assert.Equal(t, 1, snap.Page.Number)
	assert.Len(t, snap.Page.Items, DefaultPageSize)
	assert.Equal(t, 2, snap.PageNumber)
	assert.Equal(t, status.NewFailure(MsgLoadFailed), snap.ListReport)
}

func TestLoadPageSynchronous(t *testing.T) {
	api := newFakeAPI(45)
	c := New(api)

	rep := c.LoadPage(context.Background(), 2)
	assert.True(t, rep.Succeeded())
	snap := c.Snapshot()
	assert.Equal(t, 2, snap.Page.Number)
	assert.False(t, snap.Loading)
	assert.Equal(t, []int{20}, api.Offsets())

	rep = c.LoadPage(context.Background(), 0)
	assert.Equal(t, 1, c.Snapshot().Page.Number)
	assert.Equal(t, "Page 1 of 3", rep.Message)
}

func TestLoadPageWhileHandlerBusyFetchesOnce(t *testing.T) {
	api := newFakeAPI(45)
	c := startedController(t, api)

	releasePage2 := make(chan struct{})
	releasePage3 := make(chan struct{})
	api.set(func(f *fakeAPI) {
		f.listHolds[20] = releasePage2
		f.listHolds[40] = releasePage3
	})

	require.True(t, c.NextPage())
	require.Eventually(t, func() bool {
		offs := api.Offsets()
		return offs[len(offs)-1] == 20
	}, time.Second, 2*time.Millisecond)

	done := make(chan status.Report, 1)
	go func() { done <- c.LoadPage(context.Background(), 3) }()
	require.Eventually(t, func() bool {
		offs := api.Offsets()
		return offs[len(offs)-1] == 40
	}, time.Second, 2*time.Millisecond)

	// The handler finishes its overtaken page while LoadPage is still waiting.
	close(releasePage2)
	time.Sleep(50 * time.Millisecond)
	close(releasePage3)

	rep := <-done
	assert.Equal(t, "Page 3 of 3", rep.Message)
	snap := waitIdle(t, c)
	assert.Equal(t, 3, snap.Page.Number)
	assert.Equal(t, []int{0, 20, 40}, api.Offsets())
}

func TestInitialize(t *testing.T) {
	api := newFakeAPI(45)
	c := New(api)
	assert.False(t, c.Ready())

	rep := c.Initialize(context.Background())
	assert.Equal(t, status.NewSuccess("Success! Loaded 45 restaurant names."), rep)
	assert.True(t, c.Ready())
	assert.Equal(t, Ready, c.Snapshot().Status)
	assert.Equal(t, rep, c.Snapshot().InitReport)

	rep = c.Initialize(context.Background())
	assert.True(t, rep.Succeeded(), "repeat initialization is allowed")
	assert.Equal(t, 2, api.initCalls)
}

func TestInitializeFailure(t *testing.T) {
	api := newFakeAPI(45)
	c := New(api)
	require.True(t, c.Initialize(context.Background()).Succeeded())

	api.set(func(f *fakeAPI) {
		f.initResp = models.APIResponse{Status: models.StatusError, Message: "Failed to build trie: missing data"}
	})
	rep := c.Initialize(context.Background())
	assert.Equal(t, status.NewFailure("Failed to build trie: missing data"), rep)
	assert.False(t, c.Ready())
	assert.Equal(t, Uninitialized, c.Snapshot().Status)

	api.set(func(f *fakeAPI) { f.initResp = models.APIResponse{Status: models.StatusError} })
	assert.Equal(t, MsgInitFailed, c.Initialize(context.Background()).Message)
}

func TestInitializeInFlightGuard(t *testing.T) {
	api := newFakeAPI(45)
	release := make(chan struct{})
	api.set(func(f *fakeAPI) { f.initHold = release })
	c := New(api)

	first := make(chan status.Report, 1)
	go func() { first <- c.Initialize(context.Background()) }()

	require.Eventually(t, func() bool {
		return c.Snapshot().Status == Initializing
	}, time.Second, 2*time.Millisecond)
	assert.False(t, c.Ready())
	assert.Equal(t, status.NewPending(MsgInitializing), c.Snapshot().InitReport)

	assert.Equal(t, status.NewFailure(MsgInitInFlight), c.Initialize(context.Background()))

	close(release)
	assert.True(t, (<-first).Succeeded())
	assert.Equal(t, 1, api.initCalls)
	assert.True(t, c.Ready())
}

func TestAddRecordValidation(t *testing.T) {
	api := newFakeAPI(45)
	c := New(api)

	for _, name := range []string{"", "   ", "\t"} {
		rep := c.AddRecord(context.Background(), name, 5)
		assert.Equal(t, status.NewFailure(MsgNameRequired), rep)
	}
	rep := c.AddRecord(context.Background(), "Slice House", -1)
	assert.Equal(t, status.NewFailure(MsgRatingNegative), rep)

	assert.Empty(t, api.addCalls)
	assert.Equal(t, Draft{Name: "Slice House", Rating: -1}, c.Snapshot().Draft)
}

func TestAddRecordReloadsCurrentPage(t *testing.T) {
	api := newFakeAPI(45)
	api.set(func(f *fakeAPI) { f.addResp.Message = "Added restaurant: Slice House" })
	c := startedController(t, api)

	require.True(t, c.NextPage())
	waitIdle(t, c)

	rep := c.AddRecord(context.Background(), "Slice House", 3)
	assert.Equal(t, status.NewSuccess("Added restaurant: Slice House"), rep)

	snap := waitIdle(t, c)
	assert.Equal(t, Draft{}, snap.Draft)
	assert.Equal(t, 2, snap.Page.Number)
	assert.Equal(t, []int{0, 20, 20}, api.Offsets())
	assert.Equal(t, []models.AddRestaurantRequest{{Name: "Slice House", Rating: 3}}, api.addCalls)
}

func TestAddRecordFailureKeepsDraft(t *testing.T) {
	api := newFakeAPI(45)
	api.set(func(f *fakeAPI) {
		f.addResp = models.APIResponse{Status: models.StatusError, Message: "Restaurant already exists"}
	})
	c := startedController(t, api)

	rep := c.AddRecord(context.Background(), "Pizza Hut", 2)
	assert.Equal(t, status.NewFailure("Restaurant already exists"), rep)

	snap := waitIdle(t, c)
	assert.Equal(t, Draft{Name: "Pizza Hut", Rating: 2}, snap.Draft)
	assert.Equal(t, rep, snap.AddReport)
	assert.Equal(t, []int{0}, api.Offsets(), "no reload after a failed add")

	api.set(func(f *fakeAPI) { f.addResp = models.APIResponse{Status: models.StatusError} })
	assert.Equal(t, MsgAddFailed, c.AddRecord(context.Background(), "Pizza Hut", 2).Message)

	api.set(func(f *fakeAPI) { f.addResp = models.APIResponse{Status: models.StatusSuccess} })
	assert.Equal(t, MsgAdded, c.AddRecord(context.Background(), "Pizza Hut", 2).Message)
}

func TestCloseStopsHandler(t *testing.T) {
	api := newFakeAPI(45)
	c := New(api)
	c.Start(context.Background())
	waitIdle(t, c)
	c.Close()

	c.Refresh()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, []int{0}, api.Offsets())
	assert.True(t, c.Snapshot().Loading)
}
