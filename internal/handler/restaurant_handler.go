package handler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"

	"github.com/ahmednasr/restaurant-autocomplete/internal/models"
	"github.com/ahmednasr/restaurant-autocomplete/internal/service"
)

const defaultListLimit = 100

// RestaurantHandler wires HTTP → RestaurantService for the record store.
type RestaurantHandler struct {
	svc service.RestaurantService
}

// NewRestaurantHandler creates a new RestaurantHandler.
func NewRestaurantHandler(svc service.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{svc: svc}
}

// Register mounts GET and POST /restaurants on the supplied router group.
func (h *RestaurantHandler) Register(r fiber.Router) {
	r.Get("/restaurants", h.list)
	r.Post("/restaurants", h.add)
}

// list handles GET /restaurants?limit=20&offset=40
func (h *RestaurantHandler) list(c *fiber.Ctx) error {
	req := models.ListRequest{Limit: defaultListLimit}
	if err := c.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "limit and offset must be integers")
	}
	if req.Limit <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be a positive integer")
	}
	if req.Offset < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "offset must not be negative")
	}

	resp, err := h.svc.List(c.UserContext(), req.Limit, req.Offset)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Error reading restaurants: "+err.Error())
	}

	return c.JSON(resp)
}

// add handles POST /restaurants {"name": "...", "rating": 0}
func (h *RestaurantHandler) add(c *fiber.Ctx) error {
	var req models.AddRestaurantRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "body must be JSON with name and rating")
	}

	msg, err := h.svc.Add(c.UserContext(), req.Name, req.Rating)
	switch {
	case errors.Is(err, service.ErrInvalidName):
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	case errors.Is(err, service.ErrAlreadyExists):
		return c.JSON(models.APIResponse{Status: models.StatusError, Message: "Restaurant already exists"})
	case err != nil:
		return fiber.NewError(fiber.StatusInternalServerError, "Error adding restaurant: "+err.Error())
	}

	return c.JSON(models.APIResponse{Status: models.StatusSuccess, Message: msg})
}
