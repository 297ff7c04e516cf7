package core

import "context"

// Provider is a generation backend implementing the chat-completion
// capability. Implementations are stateless between calls and selected
// once per process from configuration.
type Provider interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}
