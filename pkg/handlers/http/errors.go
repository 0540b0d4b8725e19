package http

import (
	"errors"

	"github.com/NeuralTrust/SafeChat/pkg/domain"
	"github.com/gofiber/fiber/v2"
)

var ErrInvalidJsonPayload = errors.New("invalid JSON payload")

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

// statusFor maps pipeline errors onto HTTP statuses. Content blocks never reach here.
func statusFor(err error) int {
	switch {
	case domain.IsValidationError(err):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrSafetyUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
