package project

import "context"

// ListFilter narrows List results. Search matches name, code and client
// with case-insensitive substring semantics.
type ListFilter struct {
	Search   string
	Status   Status
	Priority Priority
	Page     int
	Limit    int
}

type ProjectRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (Project, error)
	List(ctx context.Context, tenantID string, filter ListFilter) ([]Project, int64, error)
	CountByStatus(ctx context.Context, tenantID string, status Status) (int64, error)
}
