package compat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/NeuralTrust/SafeChat/pkg/infra/httpx"
	"github.com/NeuralTrust/SafeChat/pkg/infra/providers"
	"github.com/valyala/fastjson"
)

const completionsPath = "/chat/completions"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

// client talks to any server exposing the OpenAI chat completions wire format, such as a
// self-hosted model gateway.
type client struct {
	httpClient httpx.Client
	parsers    fastjson.ParserPool
}

func NewCompatClient(httpClient httpx.Client) providers.Client {
	if httpClient == nil {
		httpClient = httpx.NewFastHTTPClient()
	}
	return &client{httpClient: httpClient}
}

func (c *client) Ask(
	ctx context.Context,
	config *providers.Config,
	prompt string,
) (*providers.CompletionResponse, error) {
	if config.Credentials.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	var messages []chatMessage
	if config.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: config.SystemPrompt})
	}
	if rules := providers.FormatInstructions(config.Instructions); rules != "" {
		messages = append(messages, chatMessage{Role: "system", Content: rules})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(chatRequest{
		Model:       config.Model,
		Messages:    messages,
		Temperature: config.Temperature,
		MaxTokens:   config.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := strings.TrimRight(config.Credentials.BaseURL, "/") + completionsPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if config.Credentials.ApiKey != "" {
		req.Header.Set("Authorization", "Bearer "+config.Credentials.ApiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return c.parse(resp.StatusCode, respBody, config.Model)
}

func (c *client) parse(status int, body []byte, model string) (*providers.CompletionResponse, error) {
	p := c.parsers.Get()
	defer c.parsers.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		if status != http.StatusOK {
			return nil, fmt.Errorf("non-200 status: %d", status)
		}
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	if status != http.StatusOK {
		if msg := v.GetStringBytes("error", "message"); len(msg) > 0 {
			return nil, fmt.Errorf("non-200 status: %d: %s", status, msg)
		}
		return nil, fmt.Errorf("non-200 status: %d", status)
	}

	choices := v.GetArray("choices")
	if len(choices) == 0 {
		return nil, fmt.Errorf("no completions returned")
	}
	content := choices[0].Get("message", "content")
	if content == nil || content.Type() != fastjson.TypeString {
		return nil, fmt.Errorf("malformed response: missing message content")
	}

	respModel := string(v.GetStringBytes("model"))
	if respModel == "" {
		respModel = model
	}
	return &providers.CompletionResponse{
		ID:       string(v.GetStringBytes("id")),
		Model:    respModel,
		Response: string(content.GetStringBytes()),
		Usage: providers.Usage{
			PromptTokens:     v.GetInt("usage", "prompt_tokens"),
			CompletionTokens: v.GetInt("usage", "completion_tokens"),
			TotalTokens:      v.GetInt("usage", "total_tokens"),
		},
	}, nil
}
