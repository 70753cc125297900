package session_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hihenen/mcp-orch-sub003/internal/domain/session"
	"github.com/hihenen/mcp-orch-sub003/internal/repository"
	"github.com/hihenen/mcp-orch-sub003/internal/repository/mocks"
)

func newService(t *testing.T, idleTimeout time.Duration) (*session.Service, *mocks.SessionRepository) {
	t.Helper()
	repo := new(mocks.SessionRepository)
	svc := session.NewService(repo, idleTimeout, slog.Default())
	return svc, repo
}

func TestOpenSession(t *testing.T) {
	svc, repo := newService(t, 30*time.Minute)
	ctx := context.Background()

	var created *session.ClientSession
	repo.On("Create", ctx, mock.AnythingOfType("*session.ClientSession")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*session.ClientSession)
		}).
		Return(nil)

	sess, err := svc.Open(ctx, session.OpenRequest{
		ProjectID:  "p1",
		ServerID:   "s1",
		ClientType: "cli",
		Metadata:   map[string]string{"host": "dev-box"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	require.Equal(t, session.StatusActive, sess.Status)
	require.Zero(t, sess.TotalCalls)
	require.Zero(t, sess.SuccessfulCalls)
	require.Zero(t, sess.FailedCalls)
	require.Equal(t, sess.ConnectedAt, sess.LastActivityAt)
	require.Same(t, sess, created)
}

func TestOpenSessionValidatesInput(t *testing.T) {
	svc, _ := newService(t, 30*time.Minute)
	ctx := context.Background()

	_, err := svc.Open(ctx, session.OpenRequest{ProjectID: "p1", ServerID: "s1"})
	require.ErrorIs(t, err, session.ErrInvalidInput)

	_, err = svc.Open(ctx, session.OpenRequest{ServerID: "s1", ClientType: "cli"})
	require.ErrorIs(t, err, session.ErrInvalidInput)
}

func TestRecordCall(t *testing.T) {
	svc, repo := newService(t, 30*time.Minute)
	ctx := context.Background()

	repo.On("RecordCall", ctx, "sess1", true, mock.AnythingOfType("time.Time")).
		Return(session.StatusActive, nil)

	require.NoError(t, svc.RecordCall(ctx, "sess1", session.OutcomeSuccess))
	repo.AssertExpectations(t)
}

func TestRecordCallOnDisconnectedSessionTolerated(t *testing.T) {
	svc, repo := newService(t, 30*time.Minute)
	ctx := context.Background()

	// Disconnected sessions still take the count; the anomaly is logged,
	// not surfaced as an error.
	repo.On("RecordCall", ctx, "sess1", false, mock.AnythingOfType("time.Time")).
		Return(session.StatusDisconnected, nil)

	require.NoError(t, svc.RecordCall(ctx, "sess1", session.OutcomeFailure))
}

func TestRecordCallMissingSession(t *testing.T) {
	svc, repo := newService(t, 30*time.Minute)
	ctx := context.Background()

	repo.On("RecordCall", ctx, "ghost", true, mock.AnythingOfType("time.Time")).
		Return(session.Status(""), repository.ErrNotFound)

	err := svc.RecordCall(ctx, "ghost", session.OutcomeSuccess)
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestCloseDefaultsReason(t *testing.T) {
	svc, repo := newService(t, 30*time.Minute)
	ctx := context.Background()

	repo.On("Close", ctx, "p1", "sess1", session.ReasonClient, mock.AnythingOfType("time.Time")).
		Return(true, nil)

	require.NoError(t, svc.Close(ctx, "p1", "sess1", ""))
	repo.AssertExpectations(t)
}

func TestCloseAlreadyClosedIsNoError(t *testing.T) {
	svc, repo := newService(t, 30*time.Minute)
	ctx := context.Background()

	repo.On("Close", ctx, "p1", "sess1", session.ReasonClient, mock.AnythingOfType("time.Time")).
		Return(false, nil)

	require.NoError(t, svc.Close(ctx, "p1", "sess1", session.ReasonClient))
}

func TestCloseMissingSession(t *testing.T) {
	svc, repo := newService(t, 30*time.Minute)
	ctx := context.Background()

	repo.On("Close", ctx, "p1", "ghost", session.ReasonClient, mock.AnythingOfType("time.Time")).
		Return(false, repository.ErrNotFound)

	err := svc.Close(ctx, "p1", "ghost", session.ReasonClient)
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestListRecentClampsLimit(t *testing.T) {
	svc, repo := newService(t, 30*time.Minute)
	ctx := context.Background()

	repo.On("ListRecent", ctx, mock.MatchedBy(func(opts session.ListRecentOptions) bool {
		return opts.Limit == 50 && opts.Offset == 0
	})).Return(&session.Page{Sessions: []session.ClientSession{}, Limit: 50}, nil).Once()

	_, err := svc.ListRecent(ctx, session.ListRecentOptions{ProjectID: "p1"})
	require.NoError(t, err)

	repo.On("ListRecent", ctx, mock.MatchedBy(func(opts session.ListRecentOptions) bool {
		return opts.Limit == 200
	})).Return(&session.Page{Sessions: []session.ClientSession{}, Limit: 200}, nil).Once()

	_, err = svc.ListRecent(ctx, session.ListRecentOptions{ProjectID: "p1", Limit: 5000})
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestSweepIdle(t *testing.T) {
	svc, repo := newService(t, time.Hour)
	ctx := context.Background()

	repo.On("CloseIdle", ctx,
		mock.MatchedBy(func(cutoff time.Time) bool {
			// Cutoff sits roughly one idle timeout in the past.
			return time.Since(cutoff) > 59*time.Minute && time.Since(cutoff) < 61*time.Minute
		}),
		session.ReasonTimeout,
		mock.AnythingOfType("time.Time"),
	).Return(int64(3), nil)

	closed, err := svc.SweepIdle(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), closed)
}
