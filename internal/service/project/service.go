package project

import (
	"context"

	"github.com/manhour-hq/manhour-backend-go/internal/domain/project"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/jwt"
)

type ProjectServiceImpl struct {
	projectRepo project.ProjectRepository
}

func NewProjectService(projectRepo project.ProjectRepository) project.ProjectService {
	return &ProjectServiceImpl{projectRepo: projectRepo}
}

func (s *ProjectServiceImpl) GetProject(ctx context.Context, id string) (project.Project, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return project.Project{}, err
	}
	return s.projectRepo.GetByID(ctx, tenantID, id)
}

func (s *ProjectServiceImpl) ListProjects(ctx context.Context, filter project.ListFilter) ([]project.Project, int64, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}
	return s.projectRepo.List(ctx, tenantID, filter)
}
