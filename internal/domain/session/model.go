package session

import "time"

// Status represents the lifecycle status of a client session. Disconnected
// is terminal; reconnection always creates a new session id.
type Status string

const (
	StatusActive       Status = "active"
	StatusDisconnected Status = "disconnected"
)

// Disconnect reasons recorded on close.
const (
	ReasonClient  = "client"
	ReasonTimeout = "timeout"
	ReasonError   = "error"
)

// ClientSession tracks one client's connection to one upstream server within
// a project, with call counters for usage statistics. The server reference is
// a plain identifier: the server record may be deleted independently without
// touching historical sessions. Sessions are never hard-deleted.
type ClientSession struct {
	ID               string            `json:"id"`
	ProjectID        string            `json:"project_id"`
	ServerID         string            `json:"server_id"`
	ClientType       string            `json:"client_type"`
	ClientVersion    string            `json:"client_version,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	Status           Status            `json:"status"`
	ConnectedAt      time.Time         `json:"connected_at"`
	LastActivityAt   time.Time         `json:"last_activity_at"`
	DisconnectedAt   *time.Time        `json:"disconnected_at,omitempty"`
	DisconnectReason string            `json:"disconnect_reason,omitempty"`
	TotalCalls       int64             `json:"total_calls"`
	SuccessfulCalls  int64             `json:"successful_calls"`
	FailedCalls      int64             `json:"failed_calls"`
}

// Active reports whether the session is still connected.
func (s *ClientSession) Active() bool {
	return s.Status == StatusActive
}

// Outcome classifies one tool invocation attributed to a session.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Page is one page of session history. History is append-only and unbounded,
// so reads are always paginated.
type Page struct {
	Sessions []ClientSession `json:"sessions"`
	Total    int64           `json:"total"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
}
