package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrelmts/taskhive/internal/models"
	"github.com/andrelmts/taskhive/internal/services"
	"github.com/andrelmts/taskhive/pkg/response"
)

// ProjectHandler manages project CRUD and archival.
type ProjectHandler struct {
	projects *services.ProjectService
}

func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type createProjectRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

type updateProjectRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// POST /api/workspaces/:id/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if !bindAndValidate(c, &req) {
		return
	}

	project, err := h.projects.Create(requestContext(c), c.Param("id"), services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, project)
}

// GET /api/workspaces/:id/projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projects.List(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, projects)
}

// GET /api/workspaces/:id/projects/:projectID
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.Get(requestContext(c), c.Param("id"), c.Param("projectID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, project)
}

// PATCH /api/workspaces/:id/projects/:projectID
func (h *ProjectHandler) Update(c *gin.Context) {
	var req updateProjectRequest
	if !bindAndValidate(c, &req) {
		return
	}

	project, err := h.projects.Update(requestContext(c), c.Param("id"), c.Param("projectID"), services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, project)
}

// POST /api/workspaces/:id/projects/:projectID/archive
func (h *ProjectHandler) Archive(c *gin.Context) {
	h.setStatus(c, models.ProjectArchived)
}

// POST /api/workspaces/:id/projects/:projectID/unarchive
func (h *ProjectHandler) Unarchive(c *gin.Context) {
	h.setStatus(c, models.ProjectActive)
}

func (h *ProjectHandler) setStatus(c *gin.Context, status models.ProjectStatus) {
	project, err := h.projects.SetStatus(requestContext(c), c.Param("id"), c.Param("projectID"), status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, project)
}

// DELETE /api/workspaces/:id/projects/:projectID
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projects.Delete(requestContext(c), c.Param("id"), c.Param("projectID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
