package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andrelmts/taskhive/internal/services"
	"github.com/andrelmts/taskhive/pkg/response"
)

// TimeLogHandler manages time entries under a task.
type TimeLogHandler struct {
	timeLogs *services.TimeLogService
	tasks    *services.TaskService
	projects *services.ProjectService
	members  *services.MembershipService
}

func NewTimeLogHandler(timeLogs *services.TimeLogService, tasks *services.TaskService, projects *services.ProjectService, members *services.MembershipService) *TimeLogHandler {
	return &TimeLogHandler{timeLogs: timeLogs, tasks: tasks, projects: projects, members: members}
}

type createTimeLogRequest struct {
	Minutes  int        `json:"minutes" validate:"required,min=1,max=1440"`
	Note     string     `json:"note" validate:"max=1000"`
	LoggedAt *time.Time `json:"logged_at"`
}

// POST /api/tasks/:taskID/time-logs
func (h *TimeLogHandler) Create(c *gin.Context) {
	task, _ := taskScope(c, h.tasks, h.projects, h.members)
	if task == nil {
		return
	}

	var req createTimeLogRequest
	if !bindAndValidate(c, &req) {
		return
	}

	entry, err := h.timeLogs.Create(requestContext(c), task.ID, currentUserID(c), services.CreateTimeLogInput{
		Minutes:  req.Minutes,
		Note:     req.Note,
		LoggedAt: req.LoggedAt,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, entry)
}

// GET /api/tasks/:taskID/time-logs
func (h *TimeLogHandler) List(c *gin.Context) {
	task, _ := taskScope(c, h.tasks, h.projects, h.members)
	if task == nil {
		return
	}

	entries, err := h.timeLogs.List(requestContext(c), task.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	total, err := h.timeLogs.TotalMinutes(requestContext(c), task.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"entries":       entries,
		"total_minutes": total,
	})
}
