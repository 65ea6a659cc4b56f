package gateway

import (
	"context"

	"github.com/valpere/agentran/internal/config"
	"github.com/valpere/agentran/internal/failure"
)

// New builds the gateway for cfg.Provider, throttled when
// cfg.RequestsPerMinute is set. The caller should close the result when it
// implements io.Closer.
func New(ctx context.Context, cfg config.Config) (Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var gw Gateway
	switch cfg.Provider {
	case config.ProviderXAI:
		gw = NewOpenAICompatible(cfg.Provider, cfg.APIKey, baseURLOr(cfg.BaseURL, XAIBaseURL), cfg.Model, cfg.MaxTokens, cfg.Timeout)
	case config.ProviderOpenAI:
		gw = NewOpenAICompatible(cfg.Provider, cfg.APIKey, baseURLOr(cfg.BaseURL, OpenAIBaseURL), cfg.Model, cfg.MaxTokens, cfg.Timeout)
	case config.ProviderOpenRouter:
		gw = NewOpenAICompatible(cfg.Provider, cfg.APIKey, baseURLOr(cfg.BaseURL, OpenRouterBaseURL), cfg.Model, cfg.MaxTokens, cfg.Timeout)
	case config.ProviderAnthropic:
		gw = NewAnthropic(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens, cfg.Timeout)
	case config.ProviderOllama:
		gw = NewOllama(cfg.BaseURL, cfg.Model, cfg.Timeout)
	case config.ProviderGemini:
		g, err := NewGemini(ctx, cfg.APIKey, cfg.Model, cfg.MaxTokens, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		gw = g
	case config.ProviderVertex:
		v, err := NewVertex(ctx, cfg.ProjectID, cfg.Region, cfg.Model, cfg.Credentials, cfg.MaxTokens)
		if err != nil {
			return nil, err
		}
		gw = v
	default:
		return nil, failure.Newf(failure.Configuration, "create gateway", "unsupported AI provider: %s", cfg.Provider)
	}

	return NewRateLimited(gw, cfg.RequestsPerMinute), nil
}

func baseURLOr(url, fallback string) string {
	if url != "" {
		return url
	}
	return fallback
}
