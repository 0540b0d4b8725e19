package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/NeuralTrust/SafeChat/pkg/app/generation"
	"github.com/NeuralTrust/SafeChat/pkg/app/moderation"
	moderationmocks "github.com/NeuralTrust/SafeChat/pkg/app/moderation/mocks"
	"github.com/NeuralTrust/SafeChat/pkg/app/safety"
	"github.com/NeuralTrust/SafeChat/pkg/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var raw []byte
	switch b := body.(type) {
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(b)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 {
		require.NoError(t, json.Unmarshal(data, &out))
	}
	return resp.StatusCode, out
}

func newChatApp(moderator moderation.Moderator) *fiber.App {
	catalog := generation.NewStaticCatalog("id")
	app := fiber.New()
	app.Post("/api/v1/chat", NewChatHandler(quietLogger(), moderator, catalog.Emergency).Handle)
	return app
}

func TestChatHandler_Reply(t *testing.T) {
	moderator := moderationmocks.NewModerator(t)
	moderator.EXPECT().Handle(mock.Anything, mock.MatchedBy(func(r moderation.Request) bool {
		return r.Message == "halo" && r.ChildID == "child-1" && r.Locale == "en" && r.Overrides == nil
	})).Return(&moderation.Reply{
		Response:    "Hi there!",
		SafetyScore: 100,
		Source:      generation.SourceFallback,
	}, nil).Once()

	status, body := postJSON(t, newChatApp(moderator), "/api/v1/chat", map[string]interface{}{
		"message": "halo",
		"childId": "child-1",
		"locale":  "EN",
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Hi there!", body["response"])
	assert.Equal(t, false, body["filtered"])
	assert.Equal(t, float64(100), body["safetyScore"])
	assert.Equal(t, "fallback", body["source"])
}

func TestChatHandler_PassesOverrides(t *testing.T) {
	moderator := moderationmocks.NewModerator(t)
	moderator.EXPECT().Handle(mock.Anything, mock.MatchedBy(func(r moderation.Request) bool {
		return r.Overrides != nil &&
			assert.ObjectsAreEqual([]string{"kucing"}, r.Overrides.BlockedWords) &&
			r.Overrides.Severity == safety.SeverityHigh
	})).Return(&moderation.Reply{Response: "ok", Filtered: true, SafetyScore: 60, Source: generation.SourceFallback}, nil).Once()

	status, body := postJSON(t, newChatApp(moderator), "/api/v1/chat", map[string]interface{}{
		"message":  "aku suka kucing",
		"settings": map[string]interface{}{"blocked_words": []string{"Kucing"}, "severity": "high"},
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["filtered"])
}

func TestChatHandler_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body interface{}
	}{
		{name: "malformed json", body: "{"},
		{name: "missing message", body: map[string]interface{}{"childId": "child-1"}},
		{name: "blank message", body: map[string]interface{}{"message": "   "}},
		{name: "unknown setting", body: map[string]interface{}{
			"message":  "halo",
			"settings": map[string]interface{}{"colour": "red"},
		}},
		{name: "unknown severity", body: map[string]interface{}{
			"message":  "halo",
			"settings": map[string]interface{}{"blocked_words": []string{"x"}, "severity": "extreme"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moderator := moderationmocks.NewModerator(t)
			status, body := postJSON(t, newChatApp(moderator), "/api/v1/chat", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.NotEmpty(t, body["error"])
			assert.NotContains(t, body, "safetyScore")
		})
	}
}

func TestChatHandler_ValidationFromPipeline(t *testing.T) {
	moderator := moderationmocks.NewModerator(t)
	moderator.EXPECT().Handle(mock.Anything, mock.Anything).
		Return(nil, domain.NewValidationError("message", "must not be empty")).Once()

	status, body := postJSON(t, newChatApp(moderator), "/api/v1/chat", map[string]interface{}{"message": "halo"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "invalid message: must not be empty", body["error"])
}

func TestChatHandler_UnavailableStillApologizes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "safety unavailable", err: domain.ErrSafetyUnavailable, status: fiber.StatusServiceUnavailable},
		{name: "unexpected", err: errors.New("boom"), status: fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			moderator := moderationmocks.NewModerator(t)
			moderator.EXPECT().Handle(mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			status, body := postJSON(t, newChatApp(moderator), "/api/v1/chat", map[string]interface{}{
				"message": "halo",
				"locale":  "en",
			})
			assert.Equal(t, tt.status, status)
			assert.Equal(t, generation.NewStaticCatalog("id").Emergency("en"), body["response"])
			assert.NotEmpty(t, body["error"])
		})
	}
}
