package llm

import (
	"fmt"
	"strings"

	"news-agent/internal/config"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderYandex    = "yandex"
)

// Factory creates LLM clients with consistent logic
type Factory struct {
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	AnthropicAPIKey  string
	AnthropicModel   string
	YandexOAuthToken string
	YandexFolderID   string
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		OpenAIAPIKey:     cfg.OpenAIAPIKey,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		OpenAIModel:      cfg.OpenAIModel,
		AnthropicAPIKey:  cfg.AnthropicAPIKey,
		AnthropicModel:   cfg.AnthropicModel,
		YandexOAuthToken: cfg.YandexOAuthToken,
		YandexFolderID:   cfg.YandexFolderID,
	}
}

func (f *Factory) CreateClient(provider string) (Client, error) {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		return NewOpenAI(f.OpenAIAPIKey, f.OpenAIBaseURL, f.OpenAIModel), nil
	case ProviderAnthropic:
		return NewAnthropic(f.AnthropicAPIKey, f.AnthropicModel), nil
	case ProviderYandex:
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", provider)
	}
}

// HasCredentials reports whether the provider has everything it needs to be
// constructed. Providers without credentials are skipped, not errors.
func (f *Factory) HasCredentials(provider string) bool {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		return f.OpenAIAPIKey != ""
	case ProviderAnthropic:
		return f.AnthropicAPIKey != ""
	case ProviderYandex:
		return f.YandexOAuthToken != "" && f.YandexFolderID != ""
	}
	return false
}
