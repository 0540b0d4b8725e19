package http

import (
	"github.com/NeuralTrust/SafeChat/pkg/app/moderation"
	"github.com/NeuralTrust/SafeChat/pkg/app/safety"
	"github.com/NeuralTrust/SafeChat/pkg/handlers/http/request"
	"github.com/NeuralTrust/SafeChat/pkg/handlers/http/response"
	"github.com/NeuralTrust/SafeChat/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Apology returns the fixed reply shown when the pipeline itself is down.
type Apology func(locale string) string

type chatHandler struct {
	logger    *logrus.Logger
	moderator moderation.Moderator
	apology   Apology
}

func NewChatHandler(logger *logrus.Logger, moderator moderation.Moderator, apology Apology) Handler {
	return &chatHandler{
		logger:    logger,
		moderator: moderator,
		apology:   apology,
	}
}

// Handle @Summary Send a chat message
// @Description Screens the message, generates a reply and screens the reply
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body request.ChatRequest true "Chat message"
// @Success 200 {object} response.ChatResponse
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 503 {object} response.UnavailableResponse "Safety pipeline unavailable"
// @Router /api/v1/chat [post]
func (h *chatHandler) Handle(c *fiber.Ctx) error {
	var req request.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Debug("failed to parse chat request")
		return badRequest(c, ErrInvalidJsonPayload)
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err)
	}
	overrides, err := safety.DecodeOverrides(req.Settings)
	if err != nil {
		return badRequest(c, err)
	}

	reply, err := h.moderator.Handle(c.UserContext(), moderation.Request{
		Message:   req.Message,
		ChildID:   req.ChildID,
		Locale:    req.Locale,
		Overrides: overrides,
	})
	if err != nil {
		status := statusFor(err)
		if status == fiber.StatusBadRequest {
			return badRequest(c, err)
		}
		h.logger.WithError(err).WithFields(logrus.Fields{
			"request_id": middleware.RequestID(c),
			"child_id":   req.ChildID,
		}).Error("chat message could not be moderated")
		return c.Status(status).JSON(response.UnavailableResponse{
			Response: h.apology(req.Locale),
			Error:    err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(response.ChatResponse{
		Response:    reply.Response,
		Filtered:    reply.Filtered,
		SafetyScore: reply.SafetyScore,
		Source:      string(reply.Source),
	})
}
