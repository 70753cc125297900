package role

import "errors"

var (
	// ErrNoAccess indicates the actor is not a member of the project.
	ErrNoAccess = errors.New("no access to project")
	// ErrInsufficientRole indicates the actor's role does not permit the operation.
	ErrInsufficientRole = errors.New("insufficient role")
	// ErrUnknownRole indicates an unrecognized role string.
	ErrUnknownRole = errors.New("unknown role")
)
