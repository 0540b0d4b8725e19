package http

import (
	"github.com/NeuralTrust/SafeChat/pkg/app/safety"
	"github.com/NeuralTrust/SafeChat/pkg/handlers/http/request"
	"github.com/NeuralTrust/SafeChat/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type assessHandler struct {
	logger *logrus.Logger
	scorer *safety.Scorer
}

func NewAssessHandler(logger *logrus.Logger, scorer *safety.Scorer) Handler {
	return &assessHandler{
		logger: logger,
		scorer: scorer,
	}
}

// Handle @Summary Assess a text
// @Description Scores a text without generating or recording anything
// @Tags Safety
// @Accept json
// @Produce json
// @Param request body request.AssessRequest true "Text to assess"
// @Success 200 {object} response.AssessResponse
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Router /api/v1/safety/assess [post]
func (h *assessHandler) Handle(c *fiber.Ctx) error {
	var req request.AssessRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, ErrInvalidJsonPayload)
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}
	overrides, err := safety.DecodeOverrides(req.Settings)
	if err != nil {
		return badRequest(c, err)
	}

	locale := h.scorer.Registry().ResolveLocale(req.Locale)
	return c.Status(fiber.StatusOK).JSON(response.AssessResponse{
		Locale:     locale,
		Assessment: h.scorer.Assess(req.Text, locale, overrides),
	})
}
