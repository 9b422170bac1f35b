package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	ErrNotConfigured   = errors.New("llm: endpoint or api key not configured")
	ErrEmptyCompletion = errors.New("llm: completion returned no choices")
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer produces the next assistant message for a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// ValidRole reports whether role is accepted by the chat completion endpoint.
func ValidRole(role string) bool {
	switch role {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}
