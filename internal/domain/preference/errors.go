package preference

import "errors"

var (
	// ErrUnknownServer indicates the referenced server is not configured in the project.
	ErrUnknownServer = errors.New("unknown server")
	// ErrInvalidInput indicates invalid preference input.
	ErrInvalidInput = errors.New("invalid preference input")
)
