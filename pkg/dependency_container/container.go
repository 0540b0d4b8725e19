package dependency_container

import (
	"fmt"
	"strings"

	"github.com/NeuralTrust/SafeChat/pkg/app/audit"
	"github.com/NeuralTrust/SafeChat/pkg/app/generation"
	"github.com/NeuralTrust/SafeChat/pkg/app/moderation"
	"github.com/NeuralTrust/SafeChat/pkg/app/safety"
	"github.com/NeuralTrust/SafeChat/pkg/config"
	handlers "github.com/NeuralTrust/SafeChat/pkg/handlers/http"
	"github.com/NeuralTrust/SafeChat/pkg/infra/cache"
	"github.com/NeuralTrust/SafeChat/pkg/infra/database"
	"github.com/NeuralTrust/SafeChat/pkg/infra/httpx"
	"github.com/NeuralTrust/SafeChat/pkg/infra/notifier"
	"github.com/NeuralTrust/SafeChat/pkg/infra/providers"
	providersFactory "github.com/NeuralTrust/SafeChat/pkg/infra/providers/factory"
	"github.com/NeuralTrust/SafeChat/pkg/infra/repository"
	"github.com/NeuralTrust/SafeChat/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Container struct {
	Registry            *safety.Registry
	Scorer              *safety.Scorer
	Policy              *safety.Policy
	Generator           generation.Generator
	Orchestrator        *moderation.Orchestrator
	AuditSink           *audit.Sink
	Cache               cache.Client
	HandlerTransport    handlers.HandlerTransport
	MiddlewareTransport *middleware.Transport
}

type ContainerDI struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	DB     *database.DB
	// ProviderLocator defaults to the built-in generative backends.
	ProviderLocator providersFactory.ProviderLocator
}

func NewContainer(di ContainerDI) (*Container, error) {
	registry, err := safety.LoadRegistry(di.Cfg.Safety.CatalogPath)
	if err != nil {
		return nil, err
	}
	outputSeverity, err := safety.ParseSeverity(di.Cfg.Safety.OutputBlockSeverity)
	if err != nil {
		return nil, fmt.Errorf("failed to parse output block severity: %w", err)
	}
	scorer := safety.NewScorer(registry)
	policy := safety.NewPolicy(registry, safety.WithOutputBlockSeverity(outputSeverity))

	// generation
	catalog := generation.NewStaticCatalog(registry.DefaultLocale())
	adapterOpts := []generation.Option{
		generation.WithTimeout(di.Cfg.Generation.Timeout),
		generation.WithBreaker(httpx.NewCircuitBreaker(
			"generation",
			di.Cfg.Generation.BreakerOpenTimeout,
			di.Cfg.Generation.BreakerMaxFailures,
		)),
	}
	if di.Cfg.Generation.Provider != "" {
		locator := di.ProviderLocator
		if locator == nil {
			locator = providersFactory.NewProviderLocator(
				httpx.NewFastHTTPClient(httpx.WithTimeout(di.Cfg.Generation.Timeout)),
			)
		}
		client, err := locator.Get(di.Cfg.Generation.Provider)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize generation backend: %w", err)
		}
		adapterOpts = append(adapterOpts, generation.WithBackend(client, BackendConfig(di.Cfg.Generation)))
	}
	adapter := generation.NewAdapter(di.Logger, catalog, adapterOpts...)

	// repository
	conversationRepository := repository.NewConversationRepository(di.DB.DB)
	notificationRepository := repository.NewNotificationRepository(di.DB.DB)

	// audit
	sinkOpts := []audit.Option{
		audit.WithQueueSize(di.Cfg.Audit.QueueSize),
		audit.WithWriteTimeout(di.Cfg.Audit.WriteTimeout),
	}
	var cacheInstance cache.Client
	if di.Cfg.Redis.Enabled {
		cacheInstance, err = cache.NewClient(cache.Config{
			Host:        di.Cfg.Redis.Host,
			Port:        di.Cfg.Redis.Port,
			Password:    di.Cfg.Redis.Password,
			DB:          di.Cfg.Redis.DB,
			TLS:         di.Cfg.Redis.TLS,
			TLSInsecure: di.Cfg.Redis.TLSInsecure,
		}, di.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cache: %w", err)
		}
		sinkOpts = append(sinkOpts,
			audit.WithNotifier(notifier.NewRedisNotifier(cacheInstance, di.Cfg.Safety.NotificationChannel)),
			audit.WithDeduplicator(notifier.NewRedisDeduplicator(cacheInstance), di.Cfg.Safety.NotificationDedupWindow),
		)
	} else {
		di.Logger.Warn("redis is disabled, guardian notifications are stored but not published")
		sinkOpts = append(sinkOpts,
			audit.WithDeduplicator(notifier.NewMemoryDeduplicator(), di.Cfg.Safety.NotificationDedupWindow),
		)
	}
	auditSink := audit.NewSink(di.Logger, conversationRepository, notificationRepository, sinkOpts...)
	auditSink.Start(di.Cfg.Audit.Workers)

	orchestrator := moderation.NewOrchestrator(di.Logger, scorer, policy, adapter, auditSink)

	// health
	probes := map[string]handlers.Probe{
		"database": di.DB.Ping,
	}
	if cacheInstance != nil {
		probes["redis"] = cacheInstance.Ping
	}

	// Handler Transport
	handlerTransport := &handlers.HandlerTransportDTO{
		ChatHandler:           handlers.NewChatHandler(di.Logger, orchestrator, catalog.Emergency),
		AssessHandler:         handlers.NewAssessHandler(di.Logger, scorer),
		ListCategoriesHandler: handlers.NewListCategoriesHandler(registry),
		HealthHandler:         handlers.NewHealthHandler(di.Logger, probes),
		PingHandler:           handlers.NewPingHandler(),
		GetVersionHandler:     handlers.NewGetVersionHandler(),
	}

	middlewareTransport := middleware.NewTransport(
		middleware.NewPanicRecoverMiddleware(di.Logger),
		middleware.NewCORSGlobalMiddleware(
			di.Cfg.Server.CORSOrigins,
			[]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions},
			[]string{middleware.RequestIDHeader},
			"600",
		),
		middleware.NewMetricsMiddleware(di.Logger),
	)

	return &Container{
		Registry:            registry,
		Scorer:              scorer,
		Policy:              policy,
		Generator:           adapter,
		Orchestrator:        orchestrator,
		AuditSink:           auditSink,
		Cache:               cacheInstance,
		HandlerTransport:    handlerTransport,
		MiddlewareTransport: middlewareTransport,
	}, nil
}

// Close drains the audit queue before releasing Redis.
func (c *Container) Close() {
	c.AuditSink.Shutdown()
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
}

// BackendConfig maps the generation section onto the provider request config. The system
// prompt is filled per call by the adapter.
func BackendConfig(cfg config.GenerationConfig) providers.Config {
	out := providers.Config{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Credentials: providers.Credentials{
			ApiKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
		},
	}
	switch strings.ToLower(cfg.Provider) {
	case providersFactory.ProviderAzure:
		out.Credentials.Azure = &providers.AzureOptions{
			Endpoint:    cfg.Azure.Endpoint,
			ApiVersion:  cfg.Azure.APIVersion,
			UseIdentity: cfg.Azure.UseIdentity,
		}
	case providersFactory.ProviderBedrock:
		out.Credentials.Aws = &providers.AwsCredentials{
			AccessKey:    cfg.AWS.AccessKey,
			SecretKey:    cfg.AWS.SecretKey,
			SessionToken: cfg.AWS.SessionToken,
			Region:       cfg.AWS.Region,
			UseRole:      cfg.AWS.UseRole,
			RoleARN:      cfg.AWS.RoleARN,
		}
	}
	return out
}

