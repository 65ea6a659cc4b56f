// Package gateway is the single point through which the engine talks to a
// language-model provider. Every provider adapter turns an ordered list of
// chat messages into one completion and reports the token cost of the call.
package gateway

import (
	"context"
	"strings"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// System and User build single messages.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message   { return Message{Role: RoleUser, Content: content} }

// Options tune a single call. A zero MaxTokens means the provider default
// configured on the gateway.
type Options struct {
	Temperature float64
	JSON        bool
	MaxTokens   int
}

// Reply is a completion and the number of tokens the provider charged for it.
type Reply struct {
	Text   string
	Tokens int
	Model  string
}

// Gateway performs one model call. Implementations return errors
// classified as failure.ExternalCall.
type Gateway interface {
	Call(ctx context.Context, messages []Message, opts Options) (Reply, error)
}

// Func adapts a function to the Gateway interface.
type Func func(ctx context.Context, messages []Message, opts Options) (Reply, error)

func (f Func) Call(ctx context.Context, messages []Message, opts Options) (Reply, error) {
	return f(ctx, messages, opts)
}

// splitSystem separates system messages, joined by a blank line, from the
// conversation turns for providers that take the system prompt out of band.
func splitSystem(messages []Message) (string, []Message) {
	var system []string
	var turns []Message
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	return strings.Join(system, "\n\n"), turns
}
