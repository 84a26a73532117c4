package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmednasr/restaurant-autocomplete/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/api/")
}

func TestAutocomplete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/autocomplete", r.URL.Path)
		assert.Equal(t, "piz & co", r.URL.Query().Get("prefix"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = w.Write([]byte(`{"query":"piz & co","suggestions":[{"name":"Pizzeria Roma","rating_count":12,"score":1}],"total_count":1,"status":"success"}`))
	})

	resp := c.Autocomplete(context.Background(), "piz & co", 0)
	assert.Equal(t, models.StatusSuccess, resp.Status)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, models.Suggestion{Name: "Pizzeria Roma", RatingCount: 12, Score: 1}, resp.Suggestions[0])
}

func TestAutocompleteTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	resp := New(srv.URL).Autocomplete(context.Background(), "piz", 5)
	assert.Equal(t, models.StatusError, resp.Status)
	assert.Equal(t, "piz", resp.Query)
	assert.NotNil(t, resp.Suggestions)
	assert.Empty(t, resp.Suggestions)
	assert.Zero(t, resp.TotalCount)
}

func TestAutocompleteBadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"query":`))
	})
	resp := c.Autocomplete(context.Background(), "a", 5)
	assert.True(t, resp.Status.Failed())
}

func TestListRestaurantsMissingFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "40", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"total":45}`))
	})

	resp := c.ListRestaurants(context.Background(), 20, 40)
	assert.Equal(t, models.Status(""), resp.Status)
	assert.False(t, resp.Status.Failed())
	assert.Equal(t, 45, resp.Total)
	assert.NotNil(t, resp.Restaurants)
}

func TestInitializeServiceErrorDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Failed to build trie: no such file"}`))
	})

	resp := c.Initialize(context.Background())
	assert.Equal(t, models.StatusError, resp.Status)
	assert.Equal(t, "Failed to build trie: no such file", resp.Message)
}

func TestInitializeFallbackMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html>bad gateway</html>`))
	})

	resp := c.Initialize(context.Background())
	assert.Equal(t, MsgInitFailed, resp.Message)
}

func TestAddRestaurant(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body models.AddRestaurantRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, models.AddRestaurantRequest{Name: "Slice House", Rating: 5}, body)
		_, _ = w.Write([]byte(`{"status":"success","message":"Added restaurant: Slice House"}`))
	})

	resp := c.AddRestaurant(context.Background(), "Slice House", 5)
	assert.True(t, resp.Status.Succeeded())
	assert.Equal(t, "Added restaurant: Slice House", resp.Message)
}

func TestAddRestaurantCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := c.AddRestaurant(ctx, "x", 0)
	assert.Equal(t, models.StatusError, resp.Status)
	assert.Equal(t, MsgAddFailed, resp.Message)
}

func TestNewServiceError(t *testing.T) {
	assert.Equal(t, "x", newServiceError(400, []byte(`{"message":"x"}`)).Message)
	assert.Equal(t, "", newServiceError(400, []byte(`{"detail":[{"loc":"q"}]}`)).Message)
	assert.Contains(t, newServiceError(503, nil).Error(), "503")
}

func TestOptionsLeaveCallerClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	c := New("http://localhost", WithHTTPClient(shared), WithTimeout(2*time.Second))
	assert.Equal(t, time.Minute, shared.Timeout)
	assert.Equal(t, 2*time.Second, c.http.Timeout)
	assert.NotSame(t, shared, c.http)

	c = New("http://localhost", WithHTTPClient(nil), WithTimeout(time.Second))
	require.NotNil(t, c.http)
	assert.Equal(t, time.Second, c.http.Timeout)

	New("http://localhost", WithHTTPClient(http.DefaultClient), WithTimeout(time.Second))
	assert.Zero(t, http.DefaultClient.Timeout)
}
