package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport interface {
	GetTransport() HandlerTransport
}

type HandlerTransportDTO struct {
	// Chat
	ChatHandler Handler

	// Safety introspection
	AssessHandler         Handler
	ListCategoriesHandler Handler

	// Operations
	HealthHandler     Handler
	PingHandler       Handler
	GetVersionHandler Handler
}

func (t *HandlerTransportDTO) GetTransport() HandlerTransport {
	return t
}
