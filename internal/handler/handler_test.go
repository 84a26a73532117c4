package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ahmednasr/restaurant-autocomplete/internal/models"
	"github.com/ahmednasr/restaurant-autocomplete/internal/repository"
	"github.com/ahmednasr/restaurant-autocomplete/internal/service"
)

func newTestApp(t *testing.T) (*fiber.App, service.RestaurantService) {
	t.Helper()
	repo := repository.NewRestaurantMemory(
		models.Restaurant{DisplayName: "Pizzeria Roma", UserRatingCount: 200},
		models.Restaurant{DisplayName: "Pizza Hut", UserRatingCount: 50},
		models.Restaurant{DisplayName: "Slice House", UserRatingCount: 80},
	)
	svc := service.NewRestaurantService(repo, nil)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	RegisterRoutes(app, svc)
	NewHealthHandler(svc, "memory", nil).Register(app)
	return app, svc
}

func do(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestAutocompleteBeforeInitialize(t *testing.T) {
	app, _ := newTestApp(t)

	code, body := do(t, app, http.MethodGet, "/api/autocomplete?prefix=piz", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["detail"], "not initialized")
}

func TestInitializeThenAutocomplete(t *testing.T) {
	app, _ := newTestApp(t)

	code, body := do(t, app, http.MethodPost, "/api/initialize", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(3), body["count"])

	code, body = do(t, app, http.MethodGet, "/api/autocomplete?prefix=piz&limit=1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "piz", body["query"])
	assert.Equal(t, float64(2), body["total_count"])
	suggestions := body["suggestions"].([]any)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Pizzeria Roma", suggestions[0].(map[string]any)["name"])
}

func TestAutocompleteValidation(t *testing.T) {
	app, _ := newTestApp(t)

	code, body := do(t, app, http.MethodGet, "/api/autocomplete", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "prefix parameter is required", body["detail"])

	code, _ = do(t, app, http.MethodGet, "/api/autocomplete?prefix=a&limit=zero", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListRestaurants(t *testing.T) {
	app, _ := newTestApp(t)

	code, body := do(t, app, http.MethodGet, "/api/restaurants?limit=2&offset=1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, "success", body["status"])
	rows := body["restaurants"].([]any)
	require.Len(t, rows, 2)
	assert.Equal(t, "Pizza Hut", rows[0].(map[string]any)["display_name"])

	code, body = do(t, app, http.MethodGet, "/api/restaurants", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["restaurants"], 3)

	code, _ = do(t, app, http.MethodGet, "/api/restaurants?offset=-1", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, app, http.MethodGet, "/api/restaurants?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "limit must be a positive integer", body["detail"])
}

func TestListRestaurantsHugeLimit(t *testing.T) {
	app, _ := newTestApp(t)

	code, body := do(t, app, http.MethodGet, "/api/restaurants?limit=9223372036854775807&offset=1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(3), body["total"])
	assert.Len(t, body["restaurants"], 2)
}

func TestAddRestaurant(t *testing.T) {
	app, svc := newTestApp(t)

	code, body := do(t, app, http.MethodPost, "/api/restaurants", `{"name":"Bagel Bay","rating":4}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "Added restaurant: Bagel Bay", body["message"])

	code, body = do(t, app, http.MethodPost, "/api/restaurants", `{"name":"bagel bay","rating":1}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Restaurant already exists", body["message"])

	code, _ = do(t, app, http.MethodPost, "/api/restaurants", `{"name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, code)

	assert.False(t, svc.Initialized())
}

func TestHealth(t *testing.T) {
	app, _ := newTestApp(t)

	code, body := do(t, app, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "not_configured", body["db"])
	assert.Equal(t, false, body["initialized"])
}
