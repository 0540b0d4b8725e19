package factory

import (
	"fmt"
	"strings"

	"github.com/NeuralTrust/SafeChat/pkg/infra/httpx"
	"github.com/NeuralTrust/SafeChat/pkg/infra/providers"
	"github.com/NeuralTrust/SafeChat/pkg/infra/providers/anthropic"
	"github.com/NeuralTrust/SafeChat/pkg/infra/providers/azure"
	"github.com/NeuralTrust/SafeChat/pkg/infra/providers/bedrock"
	"github.com/NeuralTrust/SafeChat/pkg/infra/providers/compat"
	"github.com/NeuralTrust/SafeChat/pkg/infra/providers/gemini"
	"github.com/NeuralTrust/SafeChat/pkg/infra/providers/openai"
)

const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
	ProviderAzure     = "azure"
	ProviderCompat    = "compat"
)

type ProviderLocator interface {
	Get(provider string) (providers.Client, error)
}

type providerLocator struct {
	httpClient httpx.Client
}

func NewProviderLocator(httpClient httpx.Client) ProviderLocator {
	if httpClient == nil {
		httpClient = httpx.NewFastHTTPClient()
	}
	return &providerLocator{
		httpClient: httpClient,
	}
}

func (f *providerLocator) Get(provider string) (providers.Client, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderOpenAI:
		return openai.NewOpenaiClient(), nil
	case ProviderGemini:
		return gemini.NewGeminiClient(), nil
	case ProviderAnthropic:
		return anthropic.NewAnthropicClient(), nil
	case ProviderBedrock:
		return bedrock.NewBedrockClient(), nil
	case ProviderAzure:
		return azure.NewAzureClient(azure.WithHTTPClient(f.httpClient)), nil
	case ProviderCompat:
		return compat.NewCompatClient(f.httpClient), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}
