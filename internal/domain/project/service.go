package project

import "context"

type ProjectService interface {
	GetProject(ctx context.Context, id string) (Project, error)
	ListProjects(ctx context.Context, filter ListFilter) ([]Project, int64, error)
}
