package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/andrelmts/taskhive/internal/models"
	"github.com/andrelmts/taskhive/pkg/errors"
	"github.com/andrelmts/taskhive/pkg/metrics"
	"github.com/andrelmts/taskhive/pkg/response"
)

// RoleAuthority decides whether a subject may act within a workspace. It is
// implemented by the membership service.
type RoleAuthority interface {
	RequireRole(ctx context.Context, workspaceID, userID string, allowed ...models.WorkspaceRole) error
}

// RequireWorkspaceRole gates a workspace-scoped route on the caller holding one
// of the allowed roles. The workspace identifier is read from the named path
// parameter.
func RequireWorkspaceRole(authority RoleAuthority, param string, allowed ...models.WorkspaceRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUserIDKey)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		userID, _ := v.(string)

		workspaceID := c.Param(param)
		if workspaceID == "" {
			response.Error(c, errors.NewBadRequest("workspace id is required"))
			c.Abort()
			return
		}

		if err := authority.RequireRole(c.Request.Context(), workspaceID, userID, allowed...); err != nil {
			metrics.RoleChecks.WithLabelValues("denied").Inc()
			response.Error(c, err)
			c.Abort()
			return
		}

		metrics.RoleChecks.WithLabelValues("allowed").Inc()
		c.Next()
	}
}
