package gateway

import (
	"context"
	"sync"

	"github.com/valpere/agentran/internal/failure"
)

// Recorded is one call seen by a Script.
type Recorded struct {
	Messages []Message
	Options  Options
}

// Prompt returns the content of the last message of the call.
func (r Recorded) Prompt() string {
	if len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[len(r.Messages)-1].Content
}

// Script is an in-memory Gateway driven by a responder function. It records
// every call and is safe for concurrent use. Packages built on the gateway
// use it in their tests.
type Script struct {
	Respond func(n int, messages []Message, opts Options) (Reply, error)

	mu    sync.Mutex
	calls []Recorded
}

// Fixed returns a Script that answers every call with text at the given cost.
func Fixed(text string, tokens int) *Script {
	return &Script{Respond: func(int, []Message, Options) (Reply, error) {
		return Reply{Text: text, Tokens: tokens, Model: "script"}, nil
	}}
}

func (s *Script) Call(ctx context.Context, messages []Message, opts Options) (Reply, error) {
	s.mu.Lock()
	n := len(s.calls)
	s.calls = append(s.calls, Recorded{Messages: append([]Message(nil), messages...), Options: opts})
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return Reply{}, failure.New(failure.ExternalCall, "script call", err)
	}
	if s.Respond == nil {
		return Reply{}, failure.Newf(failure.ExternalCall, "script call", "no responder configured")
	}
	return s.Respond(n, messages, opts)
}

// Calls returns a copy of the calls recorded so far, in arrival order.
func (s *Script) Calls() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.calls...)
}
