package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrelmts/taskhive/internal/services"
	"github.com/andrelmts/taskhive/pkg/response"
)

// AttachmentHandler manages attachment metadata under a task.
type AttachmentHandler struct {
	attachments *services.AttachmentService
	tasks       *services.TaskService
	projects    *services.ProjectService
	members     *services.MembershipService
}

func NewAttachmentHandler(attachments *services.AttachmentService, tasks *services.TaskService, projects *services.ProjectService, members *services.MembershipService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments, tasks: tasks, projects: projects, members: members}
}

type createAttachmentRequest struct {
	FileName    string `json:"file_name" validate:"required,min=1,max=255"`
	SizeBytes   int64  `json:"size_bytes" validate:"required,min=1"`
	ContentType string `json:"content_type" validate:"max=120"`
}

// POST /api/tasks/:taskID/attachments
func (h *AttachmentHandler) Create(c *gin.Context) {
	task, _ := taskScope(c, h.tasks, h.projects, h.members)
	if task == nil {
		return
	}

	var req createAttachmentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	attachment, err := h.attachments.Create(requestContext(c), task.ID, currentUserID(c), services.CreateAttachmentInput{
		FileName:    req.FileName,
		SizeBytes:   req.SizeBytes,
		ContentType: req.ContentType,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, attachment)
}

// GET /api/tasks/:taskID/attachments
func (h *AttachmentHandler) List(c *gin.Context) {
	task, _ := taskScope(c, h.tasks, h.projects, h.members)
	if task == nil {
		return
	}

	attachments, err := h.attachments.List(requestContext(c), task.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, attachments)
}

// DELETE /api/tasks/:taskID/attachments/:attachmentID
func (h *AttachmentHandler) Delete(c *gin.Context) {
	task, project := taskScope(c, h.tasks, h.projects, h.members)
	if task == nil {
		return
	}

	err := h.attachments.Delete(requestContext(c), project.WorkspaceID, task.ID, c.Param("attachmentID"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
