package server

import "errors"

var (
	// ErrServerNotFound indicates the server doesn't exist in the project.
	ErrServerNotFound = errors.New("server not found")
	// ErrInvalidName indicates a server name outside the allowed alphabet.
	ErrInvalidName = errors.New("invalid server name")
	// ErrNameTaken indicates another server in the project already uses the name.
	ErrNameTaken = errors.New("server name already in use")
	// ErrInvalidInput indicates invalid server input.
	ErrInvalidInput = errors.New("invalid server input")
)
