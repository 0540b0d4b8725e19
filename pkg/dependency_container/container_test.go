package dependency_container_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NeuralTrust/SafeChat/pkg/app/generation"
	"github.com/NeuralTrust/SafeChat/pkg/config"
	"github.com/NeuralTrust/SafeChat/pkg/dependency_container"
	"github.com/NeuralTrust/SafeChat/pkg/infra/database"
	_ "github.com/NeuralTrust/SafeChat/pkg/infra/migrations"
	"github.com/NeuralTrust/SafeChat/pkg/infra/providers"
	providermocks "github.com/NeuralTrust/SafeChat/pkg/infra/providers/mocks"
	"github.com/NeuralTrust/SafeChat/pkg/infra/repository"
	"github.com/NeuralTrust/SafeChat/pkg/server/router"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticLocator struct {
	client providers.Client
}

func (l staticLocator) Get(string) (providers.Client, error) {
	return l.client, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, CORSOrigins: []string{"*"}},
		Safety: config.SafetyConfig{
			OutputBlockSeverity:     "medium",
			NotificationDedupWindow: time.Minute,
			NotificationChannel:     "guardian:notifications",
		},
		Generation: config.GenerationConfig{
			Timeout:            time.Second,
			BreakerMaxFailures: 5,
			BreakerOpenTimeout: time.Second,
		},
		Audit: config.AuditConfig{Workers: 2, QueueSize: 100, WriteTimeout: time.Second},
	}
}

func newDB(t *testing.T, logger *logrus.Logger) *database.DB {
	t.Helper()
	db, err := database.NewDB(logger, &database.Config{
		Driver: database.DriverSQLite,
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func chat(t *testing.T, app *fiber.App, body map[string]interface{}) (int, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/chat", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	out := map[string]interface{}{}
	data, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(data, &out))
	return resp.StatusCode, out
}

func TestContainer_EndToEnd(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	db := newDB(t, logger)

	client := providermocks.NewClient(t)
	client.EXPECT().Ask(mock.Anything, mock.MatchedBy(func(cfg *providers.Config) bool {
		return cfg.Model == "test-model" && cfg.SystemPrompt == generation.SystemInstruction("id")
	}), "ceritakan tentang dinosaurus").
		Return(&providers.CompletionResponse{Response: "Dinosaurus hidup jutaan tahun lalu."}, nil).Once()

	cfg := testConfig()
	cfg.Generation.Provider = "openai"
	cfg.Generation.Model = "test-model"

	c, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:             cfg,
		Logger:          logger,
		DB:              db,
		ProviderLocator: staticLocator{client: client},
	})
	require.NoError(t, err)

	app := fiber.New()
	require.NoError(t, router.NewChatRouter(c.MiddlewareTransport, c.HandlerTransport).BuildRoutes(app))

	status, body := chat(t, app, map[string]interface{}{"message": "halo", "childId": "child-1"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "fallback", body["source"])

	status, body = chat(t, app, map[string]interface{}{"message": "ceritakan tentang dinosaurus", "childId": "child-1"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "primary", body["source"])
	assert.Equal(t, "Dinosaurus hidup jutaan tahun lalu.", body["response"])

	status, body = chat(t, app, map[string]interface{}{"message": "aku mau pukul dia", "childId": "child-1"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["filtered"])
	assert.Equal(t, float64(60), body["safetyScore"])

	c.Close()

	turns, err := repository.NewConversationRepository(db.DB).ListByChild(context.Background(), "child-1", 10)
	require.NoError(t, err)
	assert.Len(t, turns, 6)

	var flagged int
	for _, turn := range turns {
		if turn.Flagged {
			flagged++
		}
	}
	assert.Equal(t, 2, flagged)

	var notifications int64
	require.NoError(t, db.Table("guardian_notifications").Where("child_id = ?", "child-1").Count(&notifications).Error)
	assert.Equal(t, int64(1), notifications)
}

func TestContainer_NoBackendStillAnswers(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:    testConfig(),
		Logger: logger,
		DB:     newDB(t, logger),
	})
	require.NoError(t, err)
	defer c.Close()

	app := fiber.New()
	require.NoError(t, router.NewChatRouter(c.MiddlewareTransport, c.HandlerTransport).BuildRoutes(app))

	status, body := chat(t, app, map[string]interface{}{"message": "apa warna langit?", "locale": "en"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "emergency_fallback", body["source"])
	assert.NotEmpty(t, body["response"])
}

func TestContainer_InvalidCatalogIsFatal(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := testConfig()
	cfg.Safety.CatalogPath = "does-not-exist.yaml"

	_, err := dependency_container.NewContainer(dependency_container.ContainerDI{
		Cfg:    cfg,
		Logger: logger,
		DB:     newDB(t, logger),
	})
	require.Error(t, err)
}

func TestBackendConfig(t *testing.T) {
	cfg := config.GenerationConfig{
		Provider: "bedrock",
		Model:    "anthropic.claude-3-haiku",
		AWS:      config.AWSConfig{Region: "eu-west-1", UseRole: true, RoleARN: "arn:aws:iam::1:role/x"},
	}
	out := dependency_container.BackendConfig(cfg)
	require.NotNil(t, out.Credentials.Aws)
	assert.Equal(t, "eu-west-1", out.Credentials.Aws.Region)
	assert.True(t, out.Credentials.Aws.UseRole)
	assert.Nil(t, out.Credentials.Azure)

	cfg = config.GenerationConfig{Provider: "azure", Azure: config.AzureConfig{Endpoint: "https://x.openai.azure.com"}}
	out = dependency_container.BackendConfig(cfg)
	require.NotNil(t, out.Credentials.Azure)
	assert.Equal(t, "https://x.openai.azure.com", out.Credentials.Azure.Endpoint)
}
