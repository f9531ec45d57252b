package service

import "errors"

var (
	ErrSessionNotFound = errors.New("conversation session not found")
	ErrChatFailed      = errors.New("chat provider failed")
	ErrInvalidTheme    = errors.New("theme must be dark or light")
)
