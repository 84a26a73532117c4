package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ahmednasr/restaurant-autocomplete/internal/logger"
	"github.com/ahmednasr/restaurant-autocomplete/internal/models"
)

// Fallback messages used when a failed call carries no message of its own.
const (
	MsgInitFailed = "Failed to initialize data"
	MsgAddFailed  = "Failed to add restaurant"
)

// DefaultSuggestionLimit is the limit sent when callers pass a non-positive one.
const DefaultSuggestionLimit = 10

// Client is a thin wrapper around the restaurant autocomplete REST API.
// None of its methods return an error: every failure is folded into a payload
// with Status "error" so callers only ever inspect the status.
type Client struct {
	http    *http.Client
	baseURL string
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. A nil client is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout. It applies to a private copy of
// the http.Client, so a client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithLogger sets the logger transport failures are reported to.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = logger.OrNop(l) }
}

// New returns a ready-to-use client for the API rooted at baseURL
// (e.g. "http://localhost:8000/api").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize asks the service to (re)build its index from the corpus.
func (c *Client) Initialize(ctx context.Context) models.APIResponse {
	req, err := c.newRequest(ctx, http.MethodPost, "/initialize", nil, nil)
	if err != nil {
		return c.apiFailure("initialize", err, MsgInitFailed)
	}

	var out models.APIResponse
	if err := c.do(req, &out); err != nil {
		return c.apiFailure("initialize", err, MsgInitFailed)
	}
	return out
}

// Autocomplete fetches up to limit suggestions for prefix.
func (c *Client) Autocomplete(ctx context.Context, prefix string, limit int) models.AutocompleteResponse {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	q := url.Values{}
	q.Set("prefix", prefix)
	q.Set("limit", fmt.Sprint(limit))

	failed := func(err error) models.AutocompleteResponse {
		c.log.Warn("autocomplete request failed", zap.String("prefix", prefix), zap.Error(err))
		return models.AutocompleteResponse{
			Query:       prefix,
			Suggestions: []models.Suggestion{},
			Status:      models.StatusError,
		}
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/autocomplete", q, nil)
	if err != nil {
		return failed(err)
	}

	var out models.AutocompleteResponse
	if err := c.do(req, &out); err != nil {
		return failed(err)
	}
	if out.Suggestions == nil {
		out.Suggestions = []models.Suggestion{}
	}
	return out
}

// ListRestaurants fetches one window of the restaurant store.
func (c *Client) ListRestaurants(ctx context.Context, limit, offset int) models.RestaurantListResponse {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(limit))
	q.Set("offset", fmt.Sprint(offset))

	failed := func(err error) models.RestaurantListResponse {
		c.log.Warn("list restaurants request failed",
			zap.Int("limit", limit), zap.Int("offset", offset), zap.Error(err))
		return models.RestaurantListResponse{
			Restaurants: []models.Restaurant{},
			Status:      models.StatusError,
		}
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/restaurants", q, nil)
	if err != nil {
		return failed(err)
	}

	var out models.RestaurantListResponse
	if err := c.do(req, &out); err != nil {
		return failed(err)
	}
	if out.Restaurants == nil {
		out.Restaurants = []models.Restaurant{}
	}
	return out
}

// AddRestaurant creates a restaurant record.
func (c *Client) AddRestaurant(ctx context.Context, name string, rating int) models.APIResponse {
	body, err := json.Marshal(models.AddRestaurantRequest{Name: name, Rating: rating})
	if err != nil {
		return c.apiFailure("add restaurant", err, MsgAddFailed)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/restaurants", nil, bytes.NewReader(body))
	if err != nil {
		return c.apiFailure("add restaurant", err, MsgAddFailed)
	}

	var out models.APIResponse
	if err := c.do(req, &out); err != nil {
		return c.apiFailure("add restaurant", err, MsgAddFailed)
	}
	return out
}

// apiFailure logs err and folds it into an error APIResponse. A message the
// service put in an error body wins over fallback.
func (c *Client) apiFailure(op string, err error, fallback string) models.APIResponse {
	c.log.Warn(op+" request failed", zap.Error(err))

	msg := fallback
	var se *ServiceError
	if errors.As(err, &se) && se.Message != "" {
		msg = se.Message
	}
	return models.APIResponse{Status: models.StatusError, Message: msg}
}

// newRequest builds a request against baseURL+path with query and JSON body.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s %s", method, path)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	c.addHeaders(req, body != nil)
	return req, nil
}

// addHeaders sets content negotiation and correlation headers.
func (c *Client) addHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	req.Header.Set("User-Agent", "restaurant-autocomplete-client")
}

// do executes the HTTP request and decodes JSON into v.
func (c *Client) do(req *http.Request, v interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "read %s body", req.URL.Path)
	}

	if resp.StatusCode >= 300 {
		return newServiceError(resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "decode %s response", req.URL.Path)
	}
	return nil
}
