package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/project"
	"github.com/manhour-hq/manhour-backend-go/internal/handler/http/response"
)

type ProjectHandler interface {
	GetProject(w http.ResponseWriter, r *http.Request)
	ListProjects(w http.ResponseWriter, r *http.Request)
}

type projectHandlerImpl struct {
	projectService project.ProjectService
}

func NewProjectHandler(projectService project.ProjectService) ProjectHandler {
	return &projectHandlerImpl{projectService: projectService}
}

// GetProject handles GET /projects/{id}
func (h *projectHandlerImpl) GetProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Project ID is required", nil)
		return
	}

	result, err := h.projectService.GetProject(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListProjects handles GET /projects
func (h *projectHandlerImpl) ListProjects(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	filter := project.ListFilter{
		Search:   r.URL.Query().Get("search"),
		Status:   project.Status(r.URL.Query().Get("status")),
		Priority: project.Priority(r.URL.Query().Get("priority")),
		Page:     page,
		Limit:    limit,
	}

	results, total, err := h.projectService.ListProjects(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, response.NewMeta(page, limit, total))
}
