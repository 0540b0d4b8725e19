package router

import (
	"errors"

	handlers "github.com/NeuralTrust/SafeChat/pkg/handlers/http"
	"github.com/NeuralTrust/SafeChat/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

const (
	HealthPath  = "/health"
	PingPath    = "/__/ping"
	VersionPath = "/version"
)

var ErrInvalidHandlerTransport = errors.New("invalid handler transport")

type chatRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
}

func NewChatRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
) ServerRouter {
	return &chatRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *chatRouter) BuildRoutes(router *fiber.App) error {
	handlerTransport, ok := r.handlerTransport.GetTransport().(*handlers.HandlerTransportDTO)
	if !ok {
		return ErrInvalidHandlerTransport
	}

	router.Get(HealthPath, handlerTransport.HealthHandler.Handle)
	router.Get(PingPath, handlerTransport.PingHandler.Handle)
	router.Get(VersionPath, handlerTransport.GetVersionHandler.Handle)

	v1 := router.Group("/api/v1")
	{
		if mws := r.middlewareTransport.GetMiddlewares(); len(mws) > 0 {
			v1.Use(mws...)
		}

		v1.Post("/chat", handlerTransport.ChatHandler.Handle)

		safety := v1.Group("/safety")
		{
			safety.Post("/assess", handlerTransport.AssessHandler.Handle)
			safety.Get("/categories", handlerTransport.ListCategoriesHandler.Handle)
		}
	}
	return nil
}
