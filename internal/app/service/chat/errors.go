package chat

import "errors"

var (
	ErrEmptyConversation = errors.New("chat: messages must not be empty")
	ErrInvalidRole       = errors.New("chat: invalid message role")
	ErrEmptyMessage      = errors.New("chat: message text must not be empty")
	ErrInvalidMode       = errors.New("chat: unknown chat mode")
)
