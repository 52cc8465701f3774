package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrelmts/taskhive/internal/database/testutil"
	"github.com/andrelmts/taskhive/internal/models"
	apperrors "github.com/andrelmts/taskhive/pkg/errors"
)

func errorsAs(t *testing.T, err error) *apperrors.AppError {
	t.Helper()

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	return appErr
}

func newInvitationFixture(t *testing.T, clock func() time.Time) (*gorm.DB, *InvitationService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	members, err := NewMembershipService(db)
	require.NoError(t, err)

	opts := []InvitationOption{WithInvitationBaseURL("https://taskhive.example.com")}
	if clock != nil {
		opts = append(opts, WithInvitationClock(clock))
	}

	svc, err := NewInvitationService(db, members, nil, opts...)
	require.NoError(t, err)
	return db, svc
}

func TestInvitationServiceCreate(t *testing.T) {
	db, svc := newInvitationFixture(t, nil)

	owner := createTestUser(t, db, "owner@example.com")
	workspace := createTestWorkspace(t, db, owner)

	invitation, token, err := svc.Create(context.Background(), CreateInvitationInput{
		WorkspaceID:  workspace.ID,
		InvitedEmail: "newhire@example.com",
		Role:         models.RoleMember,
		InviterID:    owner.ID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.Equal(t, models.InvitationPending, invitation.Status)
	require.Equal(t, tokenHash(token), invitation.TokenHash)
	require.True(t, invitation.ExpiresAt.After(time.Now()))

	// Only the hash is persisted.
	var stored models.WorkspaceInvitation
	require.NoError(t, db.First(&stored, "id = ?", invitation.ID).Error)
	require.NotEqual(t, token, stored.TokenHash)

	// Owner cannot be granted through an invitation.
	_, _, err = svc.Create(context.Background(), CreateInvitationInput{
		WorkspaceID:  workspace.ID,
		InvitedEmail: "another@example.com",
		Role:         models.RoleOwner,
		InviterID:    owner.ID,
	})
	require.Error(t, err)
}

func TestInvitationServiceGetPreview(t *testing.T) {
	db, svc := newInvitationFixture(t, nil)

	owner := createTestUser(t, db, "owner@example.com")
	workspace := createTestWorkspace(t, db, owner)

	_, token, err := svc.Create(context.Background(), CreateInvitationInput{
		WorkspaceID:  workspace.ID,
		InvitedEmail: "newhire@example.com",
		Role:         models.RoleAdmin,
		InviterID:    owner.ID,
	})
	require.NoError(t, err)

	details, err := svc.Get(context.Background(), token, "")
	require.NoError(t, err)
	require.Equal(t, workspace.ID, details.WorkspaceID)
	require.Equal(t, "Acme", details.WorkspaceName)
	require.Equal(t, "newhire@example.com", details.InvitedEmail)
	require.Equal(t, models.RoleAdmin, details.Role)
	require.False(t, details.AlreadyMember)

	// A viewer who is already a member sees the flag set.
	details, err = svc.Get(context.Background(), token, owner.ID)
	require.NoError(t, err)
	require.True(t, details.AlreadyMember)

	_, err = svc.Get(context.Background(), "no-such-token", "")
	require.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestInvitationServiceAcceptHappyPath(t *testing.T) {
	db, svc := newInvitationFixture(t, nil)

	owner := createTestUser(t, db, "owner@example.com")
	invitee := createTestUser(t, db, "newhire@example.com")
	workspace := createTestWorkspace(t, db, owner)

	invitation, token, err := svc.Create(context.Background(), CreateInvitationInput{
		WorkspaceID:  workspace.ID,
		InvitedEmail: "newhire@example.com",
		Role:         models.RoleMember,
		InviterID:    owner.ID,
	})
	require.NoError(t, err)

	result, err := svc.Accept(context.Background(), token, Subject{ID: invitee.ID, Email: invitee.Email})
	require.NoError(t, err)
	require.Equal(t, workspace.ID, result.WorkspaceID)
	require.Equal(t, models.RoleMember, result.Role)

	var member models.WorkspaceMember
	require.NoError(t, db.Where("workspace_id = ? AND user_id = ?", workspace.ID, invitee.ID).First(&member).Error)
	require.Equal(t, models.RoleMember, member.Role)

	var stored models.WorkspaceInvitation
	require.NoError(t, db.First(&stored, "id = ?", invitation.ID).Error)
	require.Equal(t, models.InvitationAccepted, stored.Status)

	var user models.User
	require.NoError(t, db.First(&user, "id = ?", invitee.ID).Error)
	require.NotNil(t, user.LastActiveWorkspaceID)
	require.Equal(t, workspace.ID, *user.LastActiveWorkspaceID)
}

func TestInvitationServiceAcceptTwiceReportsAccepted(t *testing.T) {
	db, svc := newInvitationFixture(t, nil)

	owner := createTestUser(t, db, "owner@example.com")
	invitee := createTestUser(t, db, "newhire@example.com")
	workspace := createTestWorkspace(t, db, owner)

	_, token, err := svc.Create(context.Background(), CreateInvitationInput{
		WorkspaceID:  workspace.ID,
		InvitedEmail: "newhire@example.com",
		Role:         models.RoleMember,
		InviterID:    owner.ID,
	})
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), token, Subject{ID: invitee.ID, Email: invitee.Email})
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), token, Subject{ID: invitee.ID, Email: invitee.Email})
	require.ErrorIs(t, err, ErrInvitationAccepted)
}

func TestInvitationServiceAcceptEmailMismatch(t *testing.T) {
	db, svc := newInvitationFixture(t, nil)

	owner := createTestUser(t, db, "owner@example.com")
	impostor := createTestUser(t, db, "other@example.com")
	workspace := createTestWorkspace(t, db, owner)

	_, token, err := svc.Create(context.Background(), CreateInvitationInput{
		WorkspaceID:  workspace.ID,
		InvitedEmail: "newhire@example.com",
		Role:         models.RoleMember,
		InviterID:    owner.ID,
	})
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), token, Subject{ID: impostor.ID, Email: impostor.Email})
	require.ErrorIs(t, err, ErrInvitationEmailMismatch)

	appErr := errorsAs(t, err)
	require.Equal(t, "newhire@example.com", appErr.Details["invited_email"])
	require.Equal(t, "other@example.com", appErr.Details["your_email"])

	// Comparison is case sensitive.
	upper := createTestUser(t, db, "NewHire@example.com")
	_, err = svc.Accept(context.Background(), token, Subject{ID: upper.ID, Email: upper.Email})
	require.ErrorIs(t, err, ErrInvitationEmailMismatch)
}

func TestInvitationServiceExpiryWinsOverMismatch(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	db, svc := newInvitationFixture(t, func() time.Time { return current })

	owner := createTestUser(t, db, "owner@example.com")
	impostor := createTestUser(t, db, "other@example.com")
	workspace := createTestWorkspace(t, db, owner)

	invitation, token, err := svc.Create(context.Background(), CreateInvitationInput{
		WorkspaceID:  workspace.ID,
		InvitedEmail: "newhire@example.com",
		Role:         models.RoleMember,
		InviterID:    owner.ID,
	})
	require.NoError(t, err)

	// Past expiry and the wrong email at once: expiry is reported, and the
	// stored status transitions to expired.
	current = current.Add(8 * 24 * time.Hour)
	_, err = svc.Accept(context.Background(), token, Subject{ID: impostor.ID, Email: impostor.Email})
	require.ErrorIs(t, err, ErrInvitationExpired)

	var stored models.WorkspaceInvitation
	require.NoError(t, db.First(&stored, "id = ?", invitation.ID).Error)
	require.Equal(t, models.InvitationExpired, stored.Status)
}

func TestInvitationServiceAcceptedNeverExpires(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	db, svc := newInvitationFixture(t, func() time.Time { return current })

	owner := createTestUser(t, db, "owner@example.com")
	invitee := createTestUser(t, db, "newhire@example.com")
	workspace := createTestWorkspace(t, db, owner)

	invitation, token, err := svc.Create(context.Background(), CreateInvitationInput{
		WorkspaceID:  workspace.ID,
		InvitedEmail: "newhire@example.com",
		Role:         models.RoleMember,
		InviterID:    owner.ID,
	})
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), token, Subject{ID: invitee.ID, Email: invitee.Email})
	require.NoError(t, err)

	// Terminal states never transition: well past expiry, the invitation
	// still reports accepted, not expired.
	current = current.Add(30 * 24 * time.Hour)
	_, err = svc.Accept(context.Background(), token, Subject{ID: invitee.ID, Email: invitee.Email})
	require.ErrorIs(t, err, ErrInvitationAccepted)

	var stored models.WorkspaceInvitation
	require.NoError(t, db.First(&stored, "id = ?", invitation.ID).Error)
	require.Equal(t, models.InvitationAccepted, stored.Status)
}

func TestInvitationServiceAcceptExistingMember(t *testing.T) {
	db, svc := newInvitationFixture(t, nil)

	owner := createTestUser(t, db, "owner@example.com")
	workspace := createTestWorkspace(t, db, owner)

	invitation, token, err := svc.Create(context.Background(), CreateInvitationInput{
		WorkspaceID:  workspace.ID,
		InvitedEmail: "owner@example.com",
		Role:         models.RoleMember,
		InviterID:    owner.ID,
	})
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), token, Subject{ID: owner.ID, Email: owner.Email})
	require.ErrorIs(t, err, ErrAlreadyWorkspaceMember)

	// The token is spent: the invitation is marked accepted even though no
	// membership row was created, and the owner's role is untouched.
	var stored models.WorkspaceInvitation
	require.NoError(t, db.First(&stored, "id = ?", invitation.ID).Error)
	require.Equal(t, models.InvitationAccepted, stored.Status)

	var member models.WorkspaceMember
	require.NoError(t, db.Where("workspace_id = ? AND user_id = ?", workspace.ID, owner.ID).First(&member).Error)
	require.Equal(t, models.RoleOwner, member.Role)
}

func TestInvitationServiceListAndDelete(t *testing.T) {
	db, svc := newInvitationFixture(t, nil)

	owner := createTestUser(t, db, "owner@example.com")
	invitee := createTestUser(t, db, "first@example.com")
	workspace := createTestWorkspace(t, db, owner)

	_, firstToken, err := svc.Create(context.Background(), CreateInvitationInput{
		WorkspaceID:  workspace.ID,
		InvitedEmail: "first@example.com",
		Role:         models.RoleMember,
		InviterID:    owner.ID,
	})
	require.NoError(t, err)

	second, _, err := svc.Create(context.Background(), CreateInvitationInput{
		WorkspaceID:  workspace.ID,
		InvitedEmail: "second@example.com",
		Role:         models.RoleAdmin,
		InviterID:    owner.ID,
	})
	require.NoError(t, err)

	pending, err := svc.ListByWorkspace(context.Background(), workspace.ID)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	// Accepted invitations drop out of the pending list.
	_, err = svc.Accept(context.Background(), firstToken, Subject{ID: invitee.ID, Email: invitee.Email})
	require.NoError(t, err)

	pending, err = svc.ListByWorkspace(context.Background(), workspace.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, "second@example.com", pending[0].InvitedEmail)

	require.NoError(t, svc.Delete(context.Background(), workspace.ID, second.ID))
	require.ErrorIs(t, svc.Delete(context.Background(), workspace.ID, second.ID), ErrInvitationNotFound)
}
