package gateway

import "errors"

var (
	// ErrUnknownTool indicates the effective name resolves to no enabled tool.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrUpstreamUnavailable indicates one upstream server was unreachable or
	// timed out. The failure is scoped to that server, never to siblings.
	ErrUpstreamUnavailable = errors.New("upstream server unavailable")
	// ErrServerRequired indicates an individual-mode dispatch without a server scope.
	ErrServerRequired = errors.New("server id required in individual mode")
	// ErrInvalidInput indicates invalid dispatch input.
	ErrInvalidInput = errors.New("invalid dispatch input")
)
