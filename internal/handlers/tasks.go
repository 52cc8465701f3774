package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andrelmts/taskhive/internal/models"
	"github.com/andrelmts/taskhive/internal/services"
	"github.com/andrelmts/taskhive/pkg/response"
)

// TaskHandler manages task CRUD and board movement under a project.
type TaskHandler struct {
	tasks    *services.TaskService
	projects *services.ProjectService
	members  *services.MembershipService
}

func NewTaskHandler(tasks *services.TaskService, projects *services.ProjectService, members *services.MembershipService) *TaskHandler {
	return &TaskHandler{tasks: tasks, projects: projects, members: members}
}

type createTaskRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	SprintID    *string    `json:"sprint_id" validate:"omitempty,uuid4"`
	AssigneeID  *string    `json:"assignee_id" validate:"omitempty,uuid4"`
	DueAt       *time.Time `json:"due_at"`
}

type updateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Priority    *string    `json:"priority" validate:"omitempty,oneof=low medium high"`
	SprintID    *string    `json:"sprint_id"`
	AssigneeID  *string    `json:"assignee_id"`
	DueAt       *time.Time `json:"due_at"`
}

type moveTaskRequest struct {
	Status   string `json:"status" validate:"required,oneof=todo in_progress done"`
	Position int    `json:"position" validate:"min=0"`
}

// POST /api/projects/:projectID/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	project := projectScope(c, h.projects, h.members)
	if project == nil {
		return
	}

	var req createTaskRequest
	if !bindAndValidate(c, &req) {
		return
	}

	task, err := h.tasks.Create(requestContext(c), project.ID, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.TaskPriority(req.Priority),
		SprintID:    req.SprintID,
		AssigneeID:  req.AssigneeID,
		DueAt:       req.DueAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, task)
}

// GET /api/projects/:projectID/tasks
func (h *TaskHandler) List(c *gin.Context) {
	project := projectScope(c, h.projects, h.members)
	if project == nil {
		return
	}

	filter := services.TaskFilter{Status: models.TaskStatus(c.Query("status"))}
	if sprintID := c.Query("sprint_id"); sprintID != "" {
		filter.SprintID = &sprintID
	}
	if assigneeID := c.Query("assignee_id"); assigneeID != "" {
		filter.AssigneeID = &assigneeID
	}

	tasks, err := h.tasks.List(requestContext(c), project.ID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, tasks)
}

// GET /api/projects/:projectID/tasks/:taskID
func (h *TaskHandler) Get(c *gin.Context) {
	project := projectScope(c, h.projects, h.members)
	if project == nil {
		return
	}

	task, err := h.tasks.Get(requestContext(c), project.ID, c.Param("taskID"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, task)
}

// PATCH /api/projects/:projectID/tasks/:taskID
func (h *TaskHandler) Update(c *gin.Context) {
	project := projectScope(c, h.projects, h.members)
	if project == nil {
		return
	}

	var req updateTaskRequest
	if !bindAndValidate(c, &req) {
		return
	}

	var priority *models.TaskPriority
	if req.Priority != nil {
		p := models.TaskPriority(*req.Priority)
		priority = &p
	}

	task, err := h.tasks.Update(requestContext(c), project.ID, c.Param("taskID"), services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		SprintID:    req.SprintID,
		AssigneeID:  req.AssigneeID,
		DueAt:       req.DueAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, task)
}

// POST /api/projects/:projectID/tasks/:taskID/move
func (h *TaskHandler) Move(c *gin.Context) {
	project := projectScope(c, h.projects, h.members)
	if project == nil {
		return
	}

	var req moveTaskRequest
	if !bindAndValidate(c, &req) {
		return
	}

	task, err := h.tasks.Move(requestContext(c), project.ID, c.Param("taskID"), models.TaskStatus(req.Status), req.Position)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, task)
}

// DELETE /api/projects/:projectID/tasks/:taskID
func (h *TaskHandler) Delete(c *gin.Context) {
	project := projectScope(c, h.projects, h.members)
	if project == nil {
		return
	}

	if err := h.tasks.Delete(requestContext(c), project.ID, c.Param("taskID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
