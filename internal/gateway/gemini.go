package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/valpere/agentran/internal/failure"
)

// Gemini calls the Gemini API through the google.golang.org/genai client.
type Gemini struct {
	client    *genai.Client
	model     string
	maxTokens int
}

func NewGemini(ctx context.Context, apiKey, model string, maxTokens int, timeout time.Duration) (*Gemini, error) {
	if apiKey == "" {
		return nil, failure.Newf(failure.Configuration, "create gemini client", "Gemini API key is required")
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, failure.New(failure.Configuration, "create gemini client", fmt.Errorf("failed to create GenAI client: %w", err))
	}
	return &Gemini{client: client, model: model, maxTokens: maxTokens}, nil
}

func (g *Gemini) Call(ctx context.Context, messages []Message, opts Options) (Reply, error) {
	system, turns := splitSystem(messages)

	contents := make([]*genai.Content, 0, len(turns))
	for _, m := range turns {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(opts.Temperature)),
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if opts.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	maxTokens := g.maxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}
	if maxTokens > 0 {
		cfg.MaxOutputTokens = int32(maxTokens)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return Reply{}, failure.New(failure.ExternalCall, "gemini generate", err)
	}
	text := resp.Text()
	if text == "" {
		return Reply{}, failure.Newf(failure.ExternalCall, "gemini generate", "empty response from API")
	}

	var tokens int
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return Reply{Text: text, Tokens: tokens, Model: g.model}, nil
}
