package azure_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/NeuralTrust/SafeChat/pkg/infra/httpx/mocks"
	"github.com/NeuralTrust/SafeChat/pkg/infra/providers"
	"github.com/NeuralTrust/SafeChat/pkg/infra/providers/azure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type staticCredential struct {
	token string
}

func (s staticCredential) GetToken(_ context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: s.token, ExpiresOn: time.Now().Add(time.Hour)}, nil
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

const completion = `{
	"id": "cmpl-1",
	"choices": [{"message": {"role": "assistant", "content": "Dua tambah dua sama dengan empat."}}],
	"usage": {"prompt_tokens": 10, "completion_tokens": 8, "total_tokens": 18}
}`

func TestAsk_APIKey(t *testing.T) {
	httpClient := mocks.NewClient(t)
	httpClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		var body struct {
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(req.Body).Decode(&body)
		return req.URL.String() == "https://example.openai.azure.com/openai/deployments/kids-chat/chat/completions?api-version=2024-02-15-preview" &&
			req.Header.Get("api-key") == "secret" &&
			len(body.Messages) == 2 && body.Messages[0].Role == "system"
	})).Return(jsonResponse(http.StatusOK, completion), nil)

	client := azure.NewAzureClient(azure.WithHTTPClient(httpClient))
	resp, err := client.Ask(context.Background(), &providers.Config{
		Model:        "kids-chat",
		SystemPrompt: "Be kind.",
		Credentials: providers.Credentials{
			ApiKey: "secret",
			Azure:  &providers.AzureOptions{Endpoint: "https://example.openai.azure.com/"},
		},
	}, "2+2?")
	require.NoError(t, err)
	assert.Equal(t, "Dua tambah dua sama dengan empat.", resp.Text())
	assert.Equal(t, 18, resp.Usage.TotalTokens)
}

func TestAsk_Identity(t *testing.T) {
	httpClient := mocks.NewClient(t)
	httpClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Header.Get("Authorization") == "Bearer aad-token" && req.Header.Get("api-key") == ""
	})).Return(jsonResponse(http.StatusOK, completion), nil)

	client := azure.NewAzureClient(
		azure.WithHTTPClient(httpClient),
		azure.WithTokenCredential(staticCredential{token: "aad-token"}),
	)
	_, err := client.Ask(context.Background(), &providers.Config{
		Model: "kids-chat",
		Credentials: providers.Credentials{
			Azure: &providers.AzureOptions{Endpoint: "https://example.openai.azure.com", UseIdentity: true},
		},
	}, "halo")
	require.NoError(t, err)
}

func TestAsk_Errors(t *testing.T) {
	tests := []struct {
		name    string
		config  *providers.Config
		resp    *http.Response
		wantErr string
	}{
		{
			name:    "missing azure section",
			config:  &providers.Config{Model: "kids-chat"},
			wantErr: "azure configuration is required",
		},
		{
			name: "missing deployment",
			config: &providers.Config{Credentials: providers.Credentials{
				ApiKey: "secret",
				Azure:  &providers.AzureOptions{Endpoint: "https://example"},
			}},
			wantErr: "model (deployment ID) is required",
		},
		{
			name: "missing key",
			config: &providers.Config{Model: "kids-chat", Credentials: providers.Credentials{
				Azure: &providers.AzureOptions{Endpoint: "https://example"},
			}},
			wantErr: "API key is required",
		},
		{
			name: "non-200",
			config: &providers.Config{Model: "kids-chat", Credentials: providers.Credentials{
				ApiKey: "secret",
				Azure:  &providers.AzureOptions{Endpoint: "https://example"},
			}},
			resp:    jsonResponse(http.StatusTooManyRequests, `{"error":"slow down"}`),
			wantErr: "non-200 status: 429",
		},
		{
			name: "no choices",
			config: &providers.Config{Model: "kids-chat", Credentials: providers.Credentials{
				ApiKey: "secret",
				Azure:  &providers.AzureOptions{Endpoint: "https://example"},
			}},
			resp:    jsonResponse(http.StatusOK, `{"id":"x","choices":[]}`),
			wantErr: "no completions returned",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpClient := mocks.NewClient(t)
			if tt.resp != nil {
				httpClient.On("Do", mock.Anything).Return(tt.resp, nil)
			}
			client := azure.NewAzureClient(azure.WithHTTPClient(httpClient))
			resp, err := client.Ask(context.Background(), tt.config, "halo")
			assert.Nil(t, resp)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
