package http

import (
	"github.com/NeuralTrust/SafeChat/pkg/app/safety"
	"github.com/NeuralTrust/SafeChat/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
)

type listCategoriesHandler struct {
	registry *safety.Registry
}

func NewListCategoriesHandler(registry *safety.Registry) Handler {
	return &listCategoriesHandler{registry: registry}
}

// Handle @Summary List safety categories
// @Tags Safety
// @Produce json
// @Success 200 {object} response.CategoriesResponse
// @Router /api/v1/safety/categories [get]
func (h *listCategoriesHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(response.CategoriesResponse{
		DefaultLocale: h.registry.DefaultLocale(),
		Locales:       h.registry.Locales(),
		Categories:    h.registry.Categories(),
	})
}
