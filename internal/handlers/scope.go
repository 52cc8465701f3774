package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/andrelmts/taskhive/internal/models"
	"github.com/andrelmts/taskhive/internal/services"
	"github.com/andrelmts/taskhive/pkg/response"
)

// projectScope resolves a project-rooted route to its owning workspace and
// verifies the caller is a member. Writes the error response and returns nil
// on failure.
func projectScope(c *gin.Context, projects *services.ProjectService, members *services.MembershipService, roles ...models.WorkspaceRole) *models.Project {
	project, err := projects.GetByID(requestContext(c), c.Param("projectID"))
	if err != nil {
		response.Error(c, err)
		return nil
	}

	if len(roles) == 0 {
		roles = []models.WorkspaceRole{models.RoleOwner, models.RoleAdmin, models.RoleMember}
	}
	if err := members.RequireRole(requestContext(c), project.WorkspaceID, currentUserID(c), roles...); err != nil {
		response.Error(c, err)
		return nil
	}

	return project
}

// taskScope resolves a task-rooted route to its task, project, and workspace,
// and verifies the caller is a member.
func taskScope(c *gin.Context, tasks *services.TaskService, projects *services.ProjectService, members *services.MembershipService) (*models.Task, *models.Project) {
	task, err := tasks.GetByID(requestContext(c), c.Param("taskID"))
	if err != nil {
		response.Error(c, err)
		return nil, nil
	}

	project, err := projects.GetByID(requestContext(c), task.ProjectID)
	if err != nil {
		response.Error(c, err)
		return nil, nil
	}

	if err := members.RequireRole(requestContext(c), project.WorkspaceID, currentUserID(c),
		models.RoleOwner, models.RoleAdmin, models.RoleMember); err != nil {
		response.Error(c, err)
		return nil, nil
	}

	return task, project
}
