package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/NeuralTrust/SafeChat/pkg/app/safety"
	"github.com/NeuralTrust/SafeChat/pkg/handlers/http/response"
	"github.com/NeuralTrust/SafeChat/pkg/version"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSafetyApp(t *testing.T) (*fiber.App, *safety.Registry) {
	t.Helper()
	registry, err := safety.LoadRegistry("")
	require.NoError(t, err)

	app := fiber.New()
	app.Post("/api/v1/safety/assess", NewAssessHandler(quietLogger(), safety.NewScorer(registry)).Handle)
	app.Get("/api/v1/safety/categories", NewListCategoriesHandler(registry).Handle)
	return app, registry
}

func TestAssessHandler(t *testing.T) {
	app, _ := newSafetyApp(t)

	status, body := postJSON(t, app, "/api/v1/safety/assess", map[string]interface{}{
		"text":   "aku mau pukul dia",
		"locale": "xx",
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "id", body["locale"])
	assert.Equal(t, float64(60), body["score"])
	assert.Equal(t, "high", body["severity"])
	assert.Equal(t, true, body["should_block"])
	assert.Contains(t, body["flags"], "violence")

	status, body = postJSON(t, app, "/api/v1/safety/assess", map[string]interface{}{"text": ""})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])
}

func TestAssessHandler_Overrides(t *testing.T) {
	app, _ := newSafetyApp(t)

	status, body := postJSON(t, app, "/api/v1/safety/assess", map[string]interface{}{
		"text":     "aku suka kucing",
		"settings": map[string]interface{}{"blocked_words": []string{"kucing"}},
	})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body["flags"], "custom_blocked")
	assert.Equal(t, "medium", body["severity"])
}

func TestListCategoriesHandler(t *testing.T) {
	app, registry := newSafetyApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/safety/categories", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out response.CategoriesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "id", out.DefaultLocale)
	assert.ElementsMatch(t, []string{"id", "en"}, out.Locales)
	assert.Len(t, out.Categories, len(registry.Categories()))
}

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: refused") }

	tests := []struct {
		name   string
		probes map[string]Probe
		status int
		want   string
	}{
		{name: "no probes", probes: nil, status: fiber.StatusOK, want: "healthy"},
		{name: "all ok", probes: map[string]Probe{"database": ok, "redis": ok}, status: fiber.StatusOK, want: "healthy"},
		{name: "one down", probes: map[string]Probe{"database": ok, "redis": down}, status: fiber.StatusServiceUnavailable, want: "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/health", NewHealthHandler(quietLogger(), tt.probes).Handle)

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			var out map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
			assert.Equal(t, tt.want, out["status"])
			if tt.want == "degraded" {
				assert.Equal(t, "unavailable", out["checks"].(map[string]interface{})["redis"])
			}
		})
	}
}

func TestVersionAndPing(t *testing.T) {
	app := fiber.New()
	app.Get("/version", NewGetVersionHandler().Handle)
	app.Get("/__/ping", NewPingHandler().Handle)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/version", nil))
	require.NoError(t, err)
	var info version.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "SafeChat", info.AppName)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/__/ping", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"status":"ok"`)
}
