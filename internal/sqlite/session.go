package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/session"
	"github.com/hihenen/mcp-orch-sub003/internal/repository"
)

// SessionRepository implements session.Repository for SQLite
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `
	id, project_id, server_id, client_type, client_version, metadata,
	status, connected_at, last_activity_at, disconnected_at,
	disconnect_reason, total_calls, successful_calls, failed_calls
`

// Create creates a new client session
func (r *SessionRepository) Create(ctx context.Context, sess *session.ClientSession) error {
	metadata, err := encodeMetadata(sess.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO client_sessions (
			id, project_id, server_id, client_type, client_version, metadata,
			status, connected_at, last_activity_at,
			total_calls, successful_calls, failed_calls
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		sess.ID,
		sess.ProjectID,
		sess.ServerID,
		sess.ClientType,
		nullString(sess.ClientVersion),
		metadata,
		sess.Status,
		sess.ConnectedAt,
		sess.LastActivityAt,
		sess.TotalCalls,
		sess.SuccessfulCalls,
		sess.FailedCalls,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID within a project
func (r *SessionRepository) Get(ctx context.Context, projectID, id string) (*session.ClientSession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM client_sessions
		WHERE id = ? AND project_id = ?
	`

	row := r.db.QueryRowContext(ctx, query, id, projectID)
	sess, err := scanSession(row.Scan)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return sess, nil
}

// RecordCall atomically bumps counters and last activity in one statement,
// then reports the session's status so callers can flag late telemetry on a
// disconnected session.
func (r *SessionRepository) RecordCall(ctx context.Context, id string, success bool, now time.Time) (session.Status, error) {
	query := `
		UPDATE client_sessions
		SET total_calls = total_calls + 1,
		    successful_calls = successful_calls + ?,
		    failed_calls = failed_calls + ?,
		    last_activity_at = ?
		WHERE id = ?
	`

	successInc, failureInc := 0, 1
	if success {
		successInc, failureInc = 1, 0
	}

	result, err := r.db.ExecContext(ctx, query, successInc, failureInc, now, id)
	if err != nil {
		return "", fmt.Errorf("failed to record call: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return "", repository.ErrNotFound
	}

	var status session.Status
	err = r.db.QueryRowContext(ctx,
		`SELECT status FROM client_sessions WHERE id = ?`, id).Scan(&status)
	if err != nil {
		return "", fmt.Errorf("failed to read session status: %w", err)
	}

	return status, nil
}

// Close marks a session disconnected. The WHERE clause makes it idempotent:
// a session that is already disconnected matches no rows and keeps its
// original disconnect timestamp and reason.
func (r *SessionRepository) Close(ctx context.Context, projectID, id, reason string, now time.Time) (bool, error) {
	query := `
		UPDATE client_sessions
		SET status = ?, disconnected_at = ?, disconnect_reason = ?
		WHERE id = ? AND project_id = ? AND status = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		session.StatusDisconnected, now, reason, id, projectID, session.StatusActive)
	if err != nil {
		return false, fmt.Errorf("failed to close session: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return true, nil
	}

	// No transition happened: distinguish already-closed from missing.
	var exists int
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM client_sessions WHERE id = ? AND project_id = ?`,
		id, projectID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	if exists == 0 {
		return false, repository.ErrNotFound
	}

	return false, nil
}

// ListActive returns a project's active sessions, optionally for one server
func (r *SessionRepository) ListActive(ctx context.Context, projectID, serverID string) ([]session.ClientSession, error) {
	query := `SELECT ` + sessionColumns + `
		FROM client_sessions
		WHERE project_id = ? AND status = 'active'
	`
	args := []any{projectID}
	if serverID != "" {
		query += ` AND server_id = ?`
		args = append(args, serverID)
	}
	query += ` ORDER BY last_activity_at DESC`

	return r.querySessions(ctx, query, args...)
}

// ListRecent returns one page of session history, newest connections first
func (r *SessionRepository) ListRecent(ctx context.Context, opts session.ListRecentOptions) (*session.Page, error) {
	where := `WHERE project_id = ?`
	args := []any{opts.ProjectID}
	if opts.ServerID != "" {
		where += ` AND server_id = ?`
		args = append(args, opts.ServerID)
	}
	if opts.ActiveOnly {
		where += ` AND status = 'active'`
	}

	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM client_sessions `+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	query := `SELECT ` + sessionColumns + `
		FROM client_sessions ` + where + `
		ORDER BY connected_at DESC
		LIMIT ? OFFSET ?
	`
	sessions, err := r.querySessions(ctx, query, append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, err
	}
	if sessions == nil {
		sessions = []session.ClientSession{}
	}

	return &session.Page{
		Sessions: sessions,
		Total:    total,
		Limit:    opts.Limit,
		Offset:   opts.Offset,
	}, nil
}

// CloseIdle disconnects active sessions whose last activity predates cutoff
func (r *SessionRepository) CloseIdle(ctx context.Context, cutoff time.Time, reason string, now time.Time) (int64, error) {
	query := `
		UPDATE client_sessions
		SET status = ?, disconnected_at = ?, disconnect_reason = ?
		WHERE status = ? AND last_activity_at < ?
	`

	result, err := r.db.ExecContext(ctx, query,
		session.StatusDisconnected, now, reason, session.StatusActive, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to close idle sessions: %w", err)
	}

	closed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return closed, nil
}

func (r *SessionRepository) querySessions(ctx context.Context, query string, args ...any) ([]session.ClientSession, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []session.ClientSession
	for rows.Next() {
		sess, err := scanSession(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

func scanSession(scan func(...any) error) (*session.ClientSession, error) {
	var sess session.ClientSession
	var clientVersion, metadata, disconnectReason sql.NullString
	var disconnectedAt sql.NullTime

	err := scan(
		&sess.ID,
		&sess.ProjectID,
		&sess.ServerID,
		&sess.ClientType,
		&clientVersion,
		&metadata,
		&sess.Status,
		&sess.ConnectedAt,
		&sess.LastActivityAt,
		&disconnectedAt,
		&disconnectReason,
		&sess.TotalCalls,
		&sess.SuccessfulCalls,
		&sess.FailedCalls,
	)
	if err != nil {
		return nil, err
	}

	sess.ClientVersion = clientVersion.String
	sess.DisconnectReason = disconnectReason.String
	if disconnectedAt.Valid {
		sess.DisconnectedAt = &disconnectedAt.Time
	}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &sess.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
	}

	return &sess, nil
}

func encodeMetadata(metadata map[string]string) (sql.NullString, error) {
	if len(metadata) == 0 {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}
