package services

import "errors"

// Round-trip failures. The HTTP layer maps each one to a status code.
var (
	ErrEmptyMessage          = errors.New("Message field is required")
	ErrChatNotFound          = errors.New("Chat not found")
	ErrForbidden             = errors.New("You do not have permission to access this chat")
	ErrReadOnly              = errors.New("You can only view this chat. You cannot write messages to other users' chats.")
	ErrCompletionUnavailable = errors.New("completion API key is not configured")
	ErrUpstream              = errors.New("completion API request failed")
	ErrEmptyCompletion       = errors.New("completion API returned no choices")
)
