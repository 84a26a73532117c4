package handler

import (
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"github.com/ahmednasr/restaurant-autocomplete/internal/models"
	"github.com/ahmednasr/restaurant-autocomplete/internal/service"
)

// AutocompleteHandler wires HTTP → RestaurantService for index building and
// prefix search.
type AutocompleteHandler struct {
	svc service.RestaurantService
}

// NewAutocompleteHandler returns a handler instance.
func NewAutocompleteHandler(svc service.RestaurantService) *AutocompleteHandler {
	return &AutocompleteHandler{svc: svc}
}

// Register mounts POST /initialize and GET /autocomplete on the given router group.
func (h *AutocompleteHandler) Register(r fiber.Router) {
	r.Post("/initialize", h.initialize)
	r.Get("/autocomplete", h.autocomplete)
}

// initialize handles POST /initialize
func (h *AutocompleteHandler) initialize(c *fiber.Ctx) error {
	n, err := h.svc.Initialize(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to build index: "+err.Error())
	}

	return c.JSON(models.APIResponse{
		Status:  models.StatusSuccess,
		Message: "Index built successfully with " + strconv.Itoa(n) + " entries",
		Count:   n,
	})
}

// autocomplete handles GET /autocomplete?prefix=piz&limit=10
func (h *AutocompleteHandler) autocomplete(c *fiber.Ctx) error {
	req := models.AutocompleteRequest{
		Prefix: c.Query("prefix"),
	}
	if req.Prefix == "" {
		return fiber.NewError(fiber.StatusBadRequest, "prefix parameter is required")
	}

	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be a positive integer")
	}
	req.Limit = limit

	resp, err := h.svc.Autocomplete(c.UserContext(), req.Prefix, req.Limit)
	if errors.Is(err, service.ErrNotInitialized) {
		return fiber.NewError(fiber.StatusBadRequest,
			"Index not initialized. Please call the /initialize endpoint first.")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(resp)
}
