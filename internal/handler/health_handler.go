package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ahmednasr/restaurant-autocomplete/internal/service"
)

type HealthHandler struct {
	svc   service.RestaurantService
	store string
	db    *mongo.Client // nil unless the Mongo store is in use
}

func NewHealthHandler(svc service.RestaurantService, store string, db *mongo.Client) *HealthHandler {
	return &HealthHandler{
		svc:   svc,
		store: store,
		db:    db,
	}
}

func (h *HealthHandler) Register(r fiber.Router) {
	r.Get("/health", h.health)
}

func (h *HealthHandler) health(c *fiber.Ctx) error {
	status := fiber.Map{
		"status":      "ok",
		"store":       h.store,
		"initialized": h.svc.Initialized(),
		"db":          h.checkDB(c.UserContext()),
	}

	return c.JSON(status)
}

func (h *HealthHandler) checkDB(ctx context.Context) string {
	if h.db == nil {
		return "not_configured"
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx, nil); err != nil {
		return "error"
	}
	return "connected"
}
