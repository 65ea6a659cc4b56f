package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/agentran/internal/failure"
)

// Base URLs of the OpenAI-compatible chat completion endpoints.
const (
	XAIBaseURL        = "https://api.x.ai/v1"
	OpenAIBaseURL     = "https://api.openai.com/v1"
	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
)

// OpenAICompatible talks to any /chat/completions endpoint that follows the
// OpenAI wire format (xAI, OpenAI, OpenRouter).
type OpenAICompatible struct {
	name      string
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	headers   map[string]string
	client    *http.Client
}

func NewOpenAICompatible(name, apiKey, baseURL, model string, maxTokens int, timeout time.Duration) *OpenAICompatible {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	g := &OpenAICompatible{
		name:      name,
		apiKey:    apiKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		maxTokens: maxTokens,
		headers:   map[string]string{},
		client:    &http.Client{Timeout: timeout},
	}
	if name == "openrouter" {
		g.headers["HTTP-Referer"] = "https://agentran.local"
		g.headers["X-Title"] = "AgenTran"
	}
	return g
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Stream         bool            `json:"stream"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (g *OpenAICompatible) Call(ctx context.Context, messages []Message, opts Options) (Reply, error) {
	op := g.name + " chat completion"

	body := chatRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   g.maxTokens,
	}
	if opts.MaxTokens > 0 {
		body.MaxTokens = opts.MaxTokens
	}
	if opts.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	headers := map[string]string{"Authorization": fmt.Sprintf("Bearer %s", g.apiKey)}
	for k, v := range g.headers {
		headers[k] = v
	}

	var resp chatResponse
	if err := postJSON(ctx, g.client, g.baseURL+"/chat/completions", headers, body, &resp); err != nil {
		return Reply{}, failure.New(failure.ExternalCall, op, err)
	}
	if len(resp.Choices) == 0 {
		return Reply{}, failure.Newf(failure.ExternalCall, op, "empty response from API")
	}

	tokens := resp.Usage.TotalTokens
	if tokens == 0 {
		tokens = resp.Usage.PromptTokens + resp.Usage.CompletionTokens
	}
	model := resp.Model
	if model == "" {
		model = g.model
	}
	return Reply{Text: resp.Choices[0].Message.Content, Tokens: tokens, Model: model}, nil
}
