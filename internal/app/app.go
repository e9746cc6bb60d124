// Package app wires configuration into the services shared by the web and
// bot front-ends.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"medassist-ai/internal/assist"
	"medassist-ai/internal/config"
	"medassist-ai/internal/gemini"
	"medassist-ai/internal/httpclient"
	"medassist-ai/internal/llm"
	"medassist-ai/internal/logger"
	"medassist-ai/internal/openai"
	"medassist-ai/internal/places"
)

func NewLogger(out io.Writer, cfg config.Config) *slog.Logger {
	return logger.New(out, logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

func NewHTTPClient(cfg config.Config) *http.Client {
	return httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})
}

// NewGenerator returns the generation client for cfg.Provider.
func NewGenerator(cfg config.Config, httpClient *http.Client, log *slog.Logger) (llm.Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.New(gemini.Options{
			APIKey:     cfg.GeminiAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			APIVersion: cfg.GeminiAPIVersion,
			Model:      cfg.GeminiModel,
			Sampling:   cfg.Profile.Sampling,
			Prompts:    cfg.Profile.Prompts,
			HTTPClient: httpClient,
			Logger:     log,
		}), nil
	case config.ProviderOpenAI:
		client, err := openai.New(openai.Options{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.OpenAIModel,
			Sampling:   cfg.Profile.Sampling,
			Prompts:    cfg.Profile.Prompts,
			HTTPClient: httpClient,
			Logger:     log,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// NewAssistant builds the orchestration service with its generation and
// places clients.
func NewAssistant(cfg config.Config, httpClient *http.Client, log *slog.Logger) (*assist.Service, error) {
	gen, err := NewGenerator(cfg, httpClient, log)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	finder := places.New(places.Options{
		APIKey:     cfg.GeoapifyAPIKey,
		BaseURL:    cfg.GeoapifyBaseURL,
		Search:     cfg.Profile.Search,
		HTTPClient: httpClient,
		Logger:     log,
	})

	return assist.New(assist.Options{
		Generator:  gen,
		Places:     finder,
		EnableChat: cfg.EnableChat,
		Logger:     log,
	}), nil
}
