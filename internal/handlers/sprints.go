package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andrelmts/taskhive/internal/models"
	"github.com/andrelmts/taskhive/internal/services"
	"github.com/andrelmts/taskhive/pkg/response"
)

// SprintHandler manages sprint CRUD under a project.
type SprintHandler struct {
	sprints  *services.SprintService
	projects *services.ProjectService
	members  *services.MembershipService
}

func NewSprintHandler(sprints *services.SprintService, projects *services.ProjectService, members *services.MembershipService) *SprintHandler {
	return &SprintHandler{sprints: sprints, projects: projects, members: members}
}

type createSprintRequest struct {
	Name     string     `json:"name" validate:"required,min=1,max=120"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

type updateSprintRequest struct {
	Name     *string    `json:"name" validate:"omitempty,min=1,max=120"`
	Status   *string    `json:"status" validate:"omitempty,oneof=planned active completed"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

// POST /api/projects/:projectID/sprints
func (h *SprintHandler) Create(c *gin.Context) {
	project := projectScope(c, h.projects, h.members)
	if project == nil {
		return
	}

	var req createSprintRequest
	if !bindAndValidate(c, &req) {
		return
	}

	sprint, err := h.sprints.Create(requestContext(c), project.ID, services.CreateSprintInput{
		Name:     req.Name,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, sprint)
}

// GET /api/projects/:projectID/sprints
func (h *SprintHandler) List(c *gin.Context) {
	project := projectScope(c, h.projects, h.members)
	if project == nil {
		return
	}

	sprints, err := h.sprints.List(requestContext(c), project.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, sprints)
}

// PATCH /api/projects/:projectID/sprints/:sprintID
func (h *SprintHandler) Update(c *gin.Context) {
	project := projectScope(c, h.projects, h.members)
	if project == nil {
		return
	}

	var req updateSprintRequest
	if !bindAndValidate(c, &req) {
		return
	}

	var status *models.SprintStatus
	if req.Status != nil {
		s := models.SprintStatus(*req.Status)
		status = &s
	}

	sprint, err := h.sprints.Update(requestContext(c), project.ID, c.Param("sprintID"), services.UpdateSprintInput{
		Name:     req.Name,
		Status:   status,
		StartsAt: req.StartsAt,
		EndsAt:   req.EndsAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, sprint)
}

// DELETE /api/projects/:projectID/sprints/:sprintID
func (h *SprintHandler) Delete(c *gin.Context) {
	project := projectScope(c, h.projects, h.members)
	if project == nil {
		return
	}

	if err := h.sprints.Delete(requestContext(c), project.ID, c.Param("sprintID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
