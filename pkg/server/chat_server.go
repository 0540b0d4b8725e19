package server

import (
	"fmt"

	"github.com/NeuralTrust/SafeChat/pkg/config"
	"github.com/NeuralTrust/SafeChat/pkg/server/router"
	"github.com/sirupsen/logrus"
)

type (
	ChatServerDI struct {
		Config  *config.Config
		Logger  *logrus.Logger
		Routers []router.ServerRouter
	}
	ChatServer struct {
		*BaseServer
	}
)

func NewChatServer(di ChatServerDI) *ChatServer {
	s := &ChatServer{
		BaseServer: NewBaseServer(di.Config, di.Logger),
	}
	s.WithRouters(di.Routers...)
	return s
}

func (s *ChatServer) Run() error {
	s.setupMetricsEndpoint()
	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("starting chat server")
	return s.Router.Listen(addr)
}

func (s *ChatServer) Shutdown() error {
	if err := s.shutdownMetrics(); err != nil {
		s.Logger.WithError(err).Warn("failed to stop metrics server")
	}
	return s.Router.Shutdown()
}
