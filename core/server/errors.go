package server

import "errors"

var (
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrMissingAddress       = errors.New("server address is required")
	ErrInvalidPort          = errors.New("server port must be between 1 and 65535")
)
