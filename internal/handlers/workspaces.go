package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrelmts/taskhive/internal/services"
	"github.com/andrelmts/taskhive/pkg/response"
)

// WorkspaceHandler manages workspace CRUD, membership, and ownership transfer.
type WorkspaceHandler struct {
	workspaces *services.WorkspaceService
	members    *services.MembershipService
}

func NewWorkspaceHandler(workspaces *services.WorkspaceService, members *services.MembershipService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces, members: members}
}

type createWorkspaceRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"max=2000"`
}

type updateWorkspaceRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

type transferOwnershipRequest struct {
	NewOwnerID string `json:"new_owner_id" validate:"required,uuid4"`
}

// POST /api/workspaces
func (h *WorkspaceHandler) Create(c *gin.Context) {
	var req createWorkspaceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	workspace, err := h.workspaces.Create(requestContext(c), currentUserID(c), services.CreateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, workspace)
}

// GET /api/workspaces
func (h *WorkspaceHandler) List(c *gin.Context) {
	workspaces, err := h.workspaces.ListForUser(requestContext(c), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, workspaces)
}

// GET /api/workspaces/:id
func (h *WorkspaceHandler) Get(c *gin.Context) {
	workspaceID := c.Param("id")

	workspace, err := h.workspaces.Get(requestContext(c), workspaceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	// Viewing a workspace counts as activity.
	if err := h.members.TouchLastAccessed(requestContext(c), workspaceID, currentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, workspace)
}

// PATCH /api/workspaces/:id
func (h *WorkspaceHandler) Update(c *gin.Context) {
	var req updateWorkspaceRequest
	if !bindAndValidate(c, &req) {
		return
	}

	workspace, err := h.workspaces.Update(requestContext(c), c.Param("id"), services.UpdateWorkspaceInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, workspace)
}

// DELETE /api/workspaces/:id
func (h *WorkspaceHandler) Delete(c *gin.Context) {
	if err := h.workspaces.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GET /api/workspaces/:id/members
func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	members, err := h.members.ListMembers(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, members)
}

// DELETE /api/workspaces/:id/members/:userID
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	if err := h.members.RemoveMember(requestContext(c), c.Param("id"), c.Param("userID")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": true})
}

// POST /api/workspaces/:id/transfer-ownership
func (h *WorkspaceHandler) TransferOwnership(c *gin.Context) {
	var req transferOwnershipRequest
	if !bindAndValidate(c, &req) {
		return
	}

	result, err := h.workspaces.TransferOwnership(requestContext(c), c.Param("id"), currentUserID(c), req.NewOwnerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}
