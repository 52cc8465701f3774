package api

import (
	"github.com/gin-gonic/gin"

	"github.com/andrelmts/taskhive/internal/handlers"
	"github.com/andrelmts/taskhive/internal/middleware"
	"github.com/andrelmts/taskhive/internal/models"
	"github.com/andrelmts/taskhive/internal/services"
)

func registerWorkspaceRoutes(api *gin.RouterGroup, h *handlers.WorkspaceHandler, invitations *handlers.InvitationHandler, projects *handlers.ProjectHandler, members *services.MembershipService) {
	anyMember := middleware.RequireWorkspaceRole(members, "id",
		models.RoleOwner, models.RoleAdmin, models.RoleMember)
	managers := middleware.RequireWorkspaceRole(members, "id",
		models.RoleOwner, models.RoleAdmin)
	ownerOnly := middleware.RequireWorkspaceRole(members, "id", models.RoleOwner)

	workspaces := api.Group("/workspaces")
	{
		workspaces.POST("", h.Create)
		workspaces.GET("", h.List)
		workspaces.GET("/:id", anyMember, h.Get)
		workspaces.PATCH("/:id", managers, h.Update)
		workspaces.DELETE("/:id", ownerOnly, h.Delete)

		workspaces.GET("/:id/members", anyMember, h.ListMembers)
		workspaces.DELETE("/:id/members/:userID", managers, h.RemoveMember)
		workspaces.POST("/:id/transfer-ownership", ownerOnly, h.TransferOwnership)

		workspaces.POST("/:id/invitations", managers, invitations.Create)
		workspaces.GET("/:id/invitations", managers, invitations.ListByWorkspace)
		workspaces.DELETE("/:id/invitations/:invitationID", managers, invitations.Delete)

		workspaces.POST("/:id/projects", managers, projects.Create)
		workspaces.GET("/:id/projects", anyMember, projects.List)
		workspaces.GET("/:id/projects/:projectID", anyMember, projects.Get)
		workspaces.PATCH("/:id/projects/:projectID", managers, projects.Update)
		workspaces.POST("/:id/projects/:projectID/archive", managers, projects.Archive)
		workspaces.POST("/:id/projects/:projectID/unarchive", managers, projects.Unarchive)
		workspaces.DELETE("/:id/projects/:projectID", managers, projects.Delete)
	}
}
