package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/andrelmts/taskhive/internal/models"
	"github.com/andrelmts/taskhive/pkg/errors"
)

type stubAuthority struct {
	err         error
	workspaceID string
	userID      string
}

func (s *stubAuthority) RequireRole(_ context.Context, workspaceID, userID string, _ ...models.WorkspaceRole) error {
	s.workspaceID = workspaceID
	s.userID = userID
	return s.err
}

func workspaceRoleRouter(authority RoleAuthority, userID string) *gin.Engine {
	r := gin.New()
	if userID != "" {
		r.Use(func(c *gin.Context) {
			c.Set(CtxUserIDKey, userID)
			c.Next()
		})
	}
	r.GET("/workspaces/:id", RequireWorkspaceRole(authority, "id", models.RoleOwner, models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireWorkspaceRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("unauthenticated", func(t *testing.T) {
		r := workspaceRoleRouter(&stubAuthority{}, "")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/workspaces/ws-1", nil))
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("denied", func(t *testing.T) {
		authority := &stubAuthority{err: errors.ErrForbidden}
		r := workspaceRoleRouter(authority, "user-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/workspaces/ws-1", nil))
		require.Equal(t, http.StatusForbidden, w.Code)
		require.Equal(t, "ws-1", authority.workspaceID)
		require.Equal(t, "user-1", authority.userID)
	})

	t.Run("allowed", func(t *testing.T) {
		r := workspaceRoleRouter(&stubAuthority{}, "user-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/workspaces/ws-1", nil))
		require.Equal(t, http.StatusOK, w.Code)
	})
}
