package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/NeuralTrust/SafeChat/pkg/config"
	"github.com/NeuralTrust/SafeChat/pkg/dependency_container"
	"github.com/NeuralTrust/SafeChat/pkg/infra/database"
	infraLogger "github.com/NeuralTrust/SafeChat/pkg/infra/logger"
	_ "github.com/NeuralTrust/SafeChat/pkg/infra/migrations"
	"github.com/NeuralTrust/SafeChat/pkg/infra/prometheus"
	"github.com/NeuralTrust/SafeChat/pkg/server"
	"github.com/NeuralTrust/SafeChat/pkg/server/router"
	"github.com/NeuralTrust/SafeChat/pkg/version"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	configErr := config.Load(os.Getenv("CONFIG_PATH"))
	if configErr != nil && !errors.Is(configErr, config.ErrConfigFileNotFound) {
		log.Fatalf("failed to load config: %v", configErr)
	}
	cfg := config.GetConfig()

	logger, closeLogs, err := infraLogger.NewLogger(infraLogger.Config{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer closeLogs()
	if configErr != nil {
		logger.Warn(configErr.Error())
	}
	logger.WithFields(logrus.Fields{
		"version":    version.Version,
		"build_date": version.BuildDate,
	}).Info("starting safechat")

	prometheus.Initialize(prometheus.MetricsConfig{
		EnableLatency: cfg.Metrics.EnableLatency,
	})

	db, err := database.NewDB(logger, &database.Config{
		Driver:       cfg.Database.Driver,
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		DBName:       cfg.Database.DBName,
		SSLMode:      cfg.Database.SSLMode,
		Path:         cfg.Database.Path,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close()

	container, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:    cfg,
		Logger: logger,
		DB:     db,
	})
	if err != nil {
		logger.Fatalf("failed to initialize dependencies: %v", err)
	}

	srv := server.NewChatServer(server.ChatServerDI{
		Config: cfg,
		Logger: logger,
		Routers: []router.ServerRouter{
			router.NewChatRouter(container.MiddlewareTransport, container.HandlerTransport),
		},
	})

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")
	if err := srv.Shutdown(); err != nil {
		logger.WithError(err).Error("error shutting down server")
	}
	container.Close()
	logger.Info("server gracefully stopped")
}
