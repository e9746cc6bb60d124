package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"medassist-ai/internal/llm"
)

const DefaultModel = "gemini-1.5-pro"

type Options struct {
	APIKey     string
	BaseURL    string
	APIVersion string
	Model      string
	Sampling   llm.Sampling
	Prompts    llm.Prompts
	HTTPClient *http.Client
	Logger     *slog.Logger
}

type Client struct {
	apiKey     string
	baseURL    string
	apiVersion string
	model      string
	config     generationConfig
	prompts    llm.Prompts
	httpClient *http.Client
	logger     *slog.Logger
}

var _ llm.Generator = (*Client)(nil)

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1beta"
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
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		apiVersion: apiVersion,
		model:      model,
		config:     toGenerationConfig(sampling),
		prompts:    opts.Prompts.WithDefaults(),
		httpClient: opts.HTTPClient,
		logger:     logger,
	}
}

func (c *Client) Model() string {
	return c.model
}

// AnalyzeImage sends the image followed by the analysis instructions, the
// same part order the hosted model was tuned against.
func (c *Client) AnalyzeImage(ctx context.Context, image llm.ImageInput) (string, error) {
	if len(image.Data) == 0 {
		return "", errors.New("image is empty")
	}

	parts := []part{
		{InlineData: &blob{
			Data:     base64.StdEncoding.EncodeToString(image.Data),
			MimeType: image.MimeType,
		}},
		{Text: c.prompts.ImageAnalysis},
	}
	return c.generate(ctx, "analyze_image", parts)
}

func (c *Client) Answer(ctx context.Context, userText string) (string, error) {
	parts := []part{
		{Text: c.prompts.Assistant},
		{Text: userText},
	}
	return c.generate(ctx, "answer", parts)
}

func (c *Client) generate(ctx context.Context, op string, parts []part) (string, error) {
	req := generateContentRequest{
		Contents:         []content{{Role: "user", Parts: parts}},
		GenerationConfig: c.config,
	}

	start := time.Now()
	text, err := c.generateContent(ctx, req)
	if err != nil {
		c.logger.Warn("gemini request failed", "op", op, "model", c.model, "err", err)
		return "", err
	}
	c.logger.Debug("gemini request done", "op", op, "model", c.model, "dur_ms", time.Since(start).Milliseconds())
	return text, nil
}

func (c *Client) generateContent(ctx context.Context, payload generateContentRequest) (string, error) {
	if c.httpClient == nil {
		return "", errors.New("http client is nil")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return "", fmt.Errorf("gemini API %s: %s", httpResp.Status, strings.TrimSpace(string(rawBody)))
	}

	var decoded generateContentResponse
	if err := json.Unmarshal(rawBody, &decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(decoded.Candidates) == 0 {
		if reason := decoded.PromptFeedback.BlockReason; reason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", llm.ErrEmptyResponse, reason)
		}
		return "", llm.ErrEmptyResponse
	}

	return extractText(decoded), nil
}

func extractText(resp generateContentResponse) string {
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

func toGenerationConfig(s llm.Sampling) generationConfig {
	return generationConfig{
		Temperature:     s.Temperature,
		TopP:            s.TopP,
		TopK:            s.TopK,
		MaxOutputTokens: s.MaxOutputTokens,
	}
}
