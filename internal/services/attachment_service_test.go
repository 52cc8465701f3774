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

func newAttachmentFixture(t *testing.T) (*gorm.DB, *AttachmentService, *MembershipService, *models.Workspace, *models.Task) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	members, err := NewMembershipService(db)
	require.NoError(t, err)
	svc, err := NewAttachmentService(db, members)
	require.NoError(t, err)

	owner := createTestUser(t, db, "owner@example.com")
	workspace := createTestWorkspace(t, db, owner)
	project := createTestProject(t, db, workspace.ID)

	task := &models.Task{ProjectID: project.ID, Title: "Upload", Status: models.TaskTodo, Priority: models.PriorityMedium}
	require.NoError(t, db.Create(task).Error)
	return db, svc, members, workspace, task
}

func TestAttachmentServiceCreate(t *testing.T) {
	db, svc, _, _, task := newAttachmentFixture(t)

	uploader := createTestUser(t, db, "uploader@example.com")

	attachment, err := svc.Create(context.Background(), task.ID, uploader.ID, CreateAttachmentInput{
		FileName:    "design.pdf",
		SizeBytes:   1 << 20,
		ContentType: "application/pdf",
	})
	require.NoError(t, err)
	require.NotEmpty(t, attachment.StorageKey)
	require.Contains(t, attachment.StorageKey, task.ID)

	_, err = svc.Create(context.Background(), task.ID, uploader.ID, CreateAttachmentInput{
		FileName:  "huge.bin",
		SizeBytes: 51 << 20,
	})
	require.Error(t, err)
	_, err = svc.Create(context.Background(), task.ID, uploader.ID, CreateAttachmentInput{
		FileName:  "empty.bin",
		SizeBytes: 0,
	})
	require.Error(t, err)

	attachments, err := svc.List(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, attachments, 1)
}

func TestAttachmentServiceDeleteAuthorization(t *testing.T) {
	db, svc, members, workspace, task := newAttachmentFixture(t)

	uploader := createTestUser(t, db, "uploader@example.com")
	bystander := createTestUser(t, db, "bystander@example.com")
	_, err := members.AddMember(context.Background(), workspace.ID, uploader.ID, models.RoleMember)
	require.NoError(t, err)
	_, err = members.AddMember(context.Background(), workspace.ID, bystander.ID, models.RoleMember)
	require.NoError(t, err)

	attachment, err := svc.Create(context.Background(), task.ID, uploader.ID, CreateAttachmentInput{
		FileName:  "notes.txt",
		SizeBytes: 1024,
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), workspace.ID, task.ID, attachment.ID, bystander.ID)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	// The uploader may remove their own upload; owners and admins may remove any.
	require.NoError(t, svc.Delete(context.Background(), workspace.ID, task.ID, attachment.ID, uploader.ID))
	require.ErrorIs(t,
		svc.Delete(context.Background(), workspace.ID, task.ID, attachment.ID, uploader.ID),
		ErrAttachmentNotFound)
}
