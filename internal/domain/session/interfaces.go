package session

import (
	"context"
	"time"
)

// ListRecentOptions filters paginated session history reads.
type ListRecentOptions struct {
	ProjectID  string
	ServerID   string
	Limit      int
	Offset     int
	ActiveOnly bool
}

// Repository provides persistence for client sessions. RecordCall must
// increment counters with a single atomic statement (no lost updates under
// concurrent calls against the same session). Close is idempotent at the
// store level: closing an already-disconnected session changes nothing.
type Repository interface {
	Create(ctx context.Context, sess *ClientSession) error
	Get(ctx context.Context, projectID, id string) (*ClientSession, error)
	RecordCall(ctx context.Context, id string, success bool, now time.Time) (Status, error)
	Close(ctx context.Context, projectID, id, reason string, now time.Time) (bool, error)
	ListActive(ctx context.Context, projectID, serverID string) ([]ClientSession, error)
	ListRecent(ctx context.Context, opts ListRecentOptions) (*Page, error)
	CloseIdle(ctx context.Context, cutoff time.Time, reason string, now time.Time) (int64, error)
}
