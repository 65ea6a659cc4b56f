package gateway

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/agentran/internal/failure"
)

const (
	AnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"
)

// Anthropic calls the Messages API. The system prompt travels in its own
// field rather than as a message.
type Anthropic struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

func NewAnthropic(apiKey, baseURL, model string, maxTokens int, timeout time.Duration) *Anthropic {
	if baseURL == "" {
		baseURL = AnthropicBaseURL
	}
	if maxTokens <= 0 {
		maxTokens = 4000
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Anthropic{
		apiKey:    apiKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		maxTokens: maxTokens,
		client:    &http.Client{Timeout: timeout},
	}
}

type anthropicRequest struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func (a *Anthropic) Call(ctx context.Context, messages []Message, opts Options) (Reply, error) {
	system, turns := splitSystem(messages)
	if opts.JSON {
		system = strings.TrimSpace(system + "\n\nRespond with a single JSON object and nothing else.")
	}

	body := anthropicRequest{
		Model:       a.model,
		System:      system,
		Messages:    turns,
		MaxTokens:   a.maxTokens,
		Temperature: opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		body.MaxTokens = opts.MaxTokens
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var resp anthropicResponse
	if err := postJSON(ctx, a.client, a.baseURL+"/messages", headers, body, &resp); err != nil {
		return Reply{}, failure.New(failure.ExternalCall, "anthropic messages", err)
	}

	var sb strings.Builder
	for _, c := range resp.Content {
		if c.Type == "text" {
			sb.WriteString(c.Text)
		}
	}
	if sb.Len() == 0 {
		return Reply{}, failure.Newf(failure.ExternalCall, "anthropic messages", "empty response from API")
	}

	model := resp.Model
	if model == "" {
		model = a.model
	}
	return Reply{
		Text:   sb.String(),
		Tokens: resp.Usage.InputTokens + resp.Usage.OutputTokens,
		Model:  model,
	}, nil
}
