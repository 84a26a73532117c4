package handler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ahmednasr/restaurant-autocomplete/internal/service"
)

// RegisterRoutes mounts the restaurant API under /api.
func RegisterRoutes(app *fiber.App, svc service.RestaurantService) {
	api := app.Group("/api")
	NewAutocompleteHandler(svc).Register(api)
	NewRestaurantHandler(svc).Register(api)
}

// ErrorHandler renders every error as {"detail": "..."}, the shape the API
// client reads messages from.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}
		msg := err.Error()
		if fe != nil {
			msg = fe.Message
		}
		return c.Status(code).JSON(fiber.Map{"detail": msg})
	}
}
