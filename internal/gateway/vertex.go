package gateway

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"

	"github.com/valpere/agentran/internal/failure"
)

// Vertex calls Gemini models hosted on Vertex AI. Credentials come from
// the environment (application default credentials) unless a credentials
// file is given.
type Vertex struct {
	client    *genai.Client
	model     string
	maxTokens int
}

func NewVertex(ctx context.Context, projectID, region, model, credentialsFile string, maxTokens int) (*Vertex, error) {
	if projectID == "" || region == "" {
		return nil, failure.Newf(failure.Configuration, "create vertex client", "projectID and region cannot be empty")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := genai.NewClient(ctx, projectID, region, opts...)
	if err != nil {
		return nil, failure.New(failure.Configuration, "create vertex client", fmt.Errorf("genai.NewClient: %w", err))
	}
	return &Vertex{client: client, model: model, maxTokens: maxTokens}, nil
}

func (v *Vertex) Call(ctx context.Context, messages []Message, opts Options) (Reply, error) {
	system, turns := splitSystem(messages)
	if len(turns) == 0 {
		return Reply{}, failure.Newf(failure.Internal, "vertex generate", "no user message to send")
	}

	// A model handle per call: the handle carries per-call settings.
	model := v.client.GenerativeModel(v.model)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	model.SetTemperature(float32(opts.Temperature))
	maxTokens := v.maxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}
	if opts.JSON {
		model.ResponseMIMEType = "application/json"
	}

	session := model.StartChat()
	for _, m := range turns[:len(turns)-1] {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		session.History = append(session.History, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Content)}})
	}

	resp, err := session.SendMessage(ctx, genai.Text(turns[len(turns)-1].Content))
	if err != nil {
		return Reply{}, failure.New(failure.ExternalCall, "vertex generate", fmt.Errorf("failed to generate content from gemini: %w", err))
	}

	text := extractText(resp)
	if text == "" {
		return Reply{}, failure.Newf(failure.ExternalCall, "vertex generate", "empty response from model")
	}
	var tokens int
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return Reply{Text: text, Tokens: tokens, Model: v.model}, nil
}

func (v *Vertex) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}
