package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"medassist-ai/internal/llm"
)

const DefaultModel = "gpt-4o"

type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	Sampling   llm.Sampling
	Prompts    llm.Prompts
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is the OpenAI-backed generation provider. The chat completions API
// has no top-k parameter, so Sampling.TopK is not sent. go-openai omits a
// zero temperature from the request, so zero is sent as minTemperature.
type Client struct {
	api      *goopenai.Client
	model    string
	sampling llm.Sampling
	prompts  llm.Prompts
	logger   *slog.Logger
}

var _ llm.Generator = (*Client)(nil)

func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is empty")
	}

	cfg := goopenai.DefaultConfig(opts.APIKey)
	if baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}

	sampling := opts.Sampling
	if sampling == (llm.Sampling{}) {
		sampling = llm.DefaultSampling()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		api:      goopenai.NewClientWithConfig(cfg),
		model:    model,
		sampling: sampling,
		prompts:  opts.Prompts.WithDefaults(),
		logger:   logger,
	}, nil
}

func (c *Client) Model() string {
	return c.model
}

func (c *Client) AnalyzeImage(ctx context.Context, image llm.ImageInput) (string, error) {
	if len(image.Data) == 0 {
		return "", errors.New("image is empty")
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", image.MimeType, base64.StdEncoding.EncodeToString(image.Data))
	return c.complete(ctx, "analyze_image", []goopenai.ChatCompletionMessage{
		{Role: goopenai.ChatMessageRoleSystem, Content: c.prompts.ImageAnalysis},
		{
			Role: goopenai.ChatMessageRoleUser,
			MultiContent: []goopenai.ChatMessagePart{
				{
					Type:     goopenai.ChatMessagePartTypeImageURL,
					ImageURL: &goopenai.ChatMessageImageURL{URL: dataURL, Detail: goopenai.ImageURLDetailAuto},
				},
			},
		},
	})
}

func (c *Client) Answer(ctx context.Context, userText string) (string, error) {
	return c.complete(ctx, "answer", []goopenai.ChatCompletionMessage{
		{Role: goopenai.ChatMessageRoleSystem, Content: c.prompts.Assistant},
		{Role: goopenai.ChatMessageRoleUser, Content: userText},
	})
}

func (c *Client) complete(ctx context.Context, op string, messages []goopenai.ChatCompletionMessage) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: requestTemperature(c.sampling.Temperature),
		TopP:        float32(c.sampling.TopP),
		MaxTokens:   c.sampling.MaxOutputTokens,
	})
	if err != nil {
		c.logger.Warn("openai request failed", "op", op, "model", c.model, "err", err)
		return "", fmt.Errorf("openai chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", llm.ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

const minTemperature = 0.0001

func requestTemperature(t float64) float32 {
	if t <= 0 {
		return minTemperature
	}
	return float32(t)
}
