package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/agentran/internal/failure"
)

const OllamaBaseURL = "http://localhost:11434"

// Ollama calls a self-hosted Ollama server through /api/chat.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllama(baseURL, model string, timeout time.Duration) *Ollama {
	if baseURL == "" {
		baseURL = OllamaBaseURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	PromptEvalCount int `json:"prompt_eval_count"`
	EvalCount       int `json:"eval_count"`
}

func (o *Ollama) Call(ctx context.Context, messages []Message, opts Options) (Reply, error) {
	body := ollamaChatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   false,
		Options:  map[string]any{"temperature": opts.Temperature},
	}
	if opts.JSON {
		body.Format = "json"
	}
	if opts.MaxTokens > 0 {
		body.Options["num_predict"] = opts.MaxTokens
	}

	var resp ollamaChatResponse
	if err := postJSON(ctx, o.client, fmt.Sprintf("%s/api/chat", o.baseURL), nil, body, &resp); err != nil {
		return Reply{}, failure.New(failure.ExternalCall, "ollama chat", err)
	}
	return Reply{
		Text:   resp.Message.Content,
		Tokens: resp.PromptEvalCount + resp.EvalCount,
		Model:  o.model,
	}, nil
}
