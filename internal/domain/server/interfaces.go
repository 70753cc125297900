package server

import "context"

// Repository provides persistence for upstream server records.
type Repository interface {
	Create(ctx context.Context, srv *Server) error
	Get(ctx context.Context, projectID, id string) (*Server, error)
	ListByProject(ctx context.Context, projectID string) ([]Server, error)
	Delete(ctx context.Context, projectID, id string) error
}
