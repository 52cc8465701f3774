package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrelmts/taskhive/internal/database/testutil"
	"github.com/andrelmts/taskhive/internal/models"
	apperrors "github.com/andrelmts/taskhive/pkg/errors"
)

func newCommentFixture(t *testing.T) (*gorm.DB, *CommentService, *models.Workspace, *models.Task) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	members, err := NewMembershipService(db)
	require.NoError(t, err)
	svc, err := NewCommentService(db, members)
	require.NoError(t, err)

	owner := createTestUser(t, db, "owner@example.com")
	workspace := createTestWorkspace(t, db, owner)
	project := createTestProject(t, db, workspace.ID)

	task := &models.Task{ProjectID: project.ID, Title: "Discuss", Status: models.TaskTodo, Priority: models.PriorityMedium}
	require.NoError(t, db.Create(task).Error)
	return db, svc, workspace, task
}

func TestCommentServiceCreateAndList(t *testing.T) {
	db, svc, _, task := newCommentFixture(t)

	author := createTestUser(t, db, "author@example.com")

	_, err := svc.Create(context.Background(), task.ID, author.ID, "First!")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), task.ID, author.ID, "Second thought")
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), task.ID, author.ID, "   ")
	require.Error(t, err)

	comments, err := svc.List(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.Equal(t, "First!", comments[0].Body)
	require.NotNil(t, comments[0].Author)
	require.Equal(t, "author@example.com", comments[0].Author.Email)
}

func TestCommentServiceDeleteAuthorization(t *testing.T) {
	db, svc, workspace, task := newCommentFixture(t)

	members, err := NewMembershipService(db)
	require.NoError(t, err)

	author := createTestUser(t, db, "author@example.com")
	admin := createTestUser(t, db, "admin@example.com")
	bystander := createTestUser(t, db, "bystander@example.com")
	for _, u := range []*models.User{author, admin, bystander} {
		role := models.RoleMember
		if u == admin {
			role = models.RoleAdmin
		}
		_, err = members.AddMember(context.Background(), workspace.ID, u.ID, role)
		require.NoError(t, err)
	}

	comment, err := svc.Create(context.Background(), task.ID, author.ID, "Delete me")
	require.NoError(t, err)

	// A plain member who is not the author cannot delete.
	err = svc.Delete(context.Background(), workspace.ID, task.ID, comment.ID, bystander.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	// The author can.
	require.NoError(t, svc.Delete(context.Background(), workspace.ID, task.ID, comment.ID, author.ID))

	// Admins can delete other people's comments.
	comment, err = svc.Create(context.Background(), task.ID, author.ID, "Another")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), workspace.ID, task.ID, comment.ID, admin.ID))

	err = svc.Delete(context.Background(), workspace.ID, task.ID, comment.ID, author.ID)
	require.ErrorIs(t, err, ErrCommentNotFound)
}
