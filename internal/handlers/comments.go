package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrelmts/taskhive/internal/services"
	"github.com/andrelmts/taskhive/pkg/response"
)

// CommentHandler manages task discussion threads.
type CommentHandler struct {
	comments *services.CommentService
	tasks    *services.TaskService
	projects *services.ProjectService
	members  *services.MembershipService
}

func NewCommentHandler(comments *services.CommentService, tasks *services.TaskService, projects *services.ProjectService, members *services.MembershipService) *CommentHandler {
	return &CommentHandler{comments: comments, tasks: tasks, projects: projects, members: members}
}

type createCommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=5000"`
}

// POST /api/tasks/:taskID/comments
func (h *CommentHandler) Create(c *gin.Context) {
	task, _ := taskScope(c, h.tasks, h.projects, h.members)
	if task == nil {
		return
	}

	var req createCommentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	comment, err := h.comments.Create(requestContext(c), task.ID, currentUserID(c), req.Body)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, comment)
}

// GET /api/tasks/:taskID/comments
func (h *CommentHandler) List(c *gin.Context) {
	task, _ := taskScope(c, h.tasks, h.projects, h.members)
	if task == nil {
		return
	}

	comments, err := h.comments.List(requestContext(c), task.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, comments)
}

// DELETE /api/tasks/:taskID/comments/:commentID
func (h *CommentHandler) Delete(c *gin.Context) {
	task, project := taskScope(c, h.tasks, h.projects, h.members)
	if task == nil {
		return
	}

	err := h.comments.Delete(requestContext(c), project.WorkspaceID, task.ID, c.Param("commentID"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
