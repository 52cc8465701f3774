package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/andrelmts/taskhive/internal/database/testutil"
	"github.com/andrelmts/taskhive/internal/models"
)

func seedInvitation(t *testing.T, db *gorm.DB, status models.InvitationStatus, expiresAt time.Time, tokenHash string) *models.WorkspaceInvitation {
	t.Helper()

	user := &models.User{Email: tokenHash + "@example.com", Name: "Seed", Password: "x"}
	require.NoError(t, db.Create(user).Error)
	workspace := &models.Workspace{Name: "W", OwnerID: user.ID}
	require.NoError(t, db.Create(workspace).Error)

	invitation := &models.WorkspaceInvitation{
		WorkspaceID:  workspace.ID,
		InvitedEmail: "invitee@example.com",
		InvitedBy:    user.ID,
		Role:         models.RoleMember,
		TokenHash:    tokenHash,
		Status:       status,
		ExpiresAt:    expiresAt,
	}
	require.NoError(t, db.Create(invitation).Error)
	return invitation
}

func TestExpireOverdueInvitations(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	overdue := seedInvitation(t, db, models.InvitationPending, now.Add(-time.Hour), "h1")
	fresh := seedInvitation(t, db, models.InvitationPending, now.Add(time.Hour), "h2")
	accepted := seedInvitation(t, db, models.InvitationAccepted, now.Add(-time.Hour), "h3")

	count, err := ExpireOverdueInvitations(context.Background(), db, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	var reloaded models.WorkspaceInvitation
	require.NoError(t, db.First(&reloaded, "id = ?", overdue.ID).Error)
	require.Equal(t, models.InvitationExpired, reloaded.Status)

	// Reset between lookups: GORM adds a populated primary key to the query
	// conditions, which would make the next First match nothing.
	reloaded = models.WorkspaceInvitation{}
	require.NoError(t, db.First(&reloaded, "id = ?", fresh.ID).Error)
	require.Equal(t, models.InvitationPending, reloaded.Status)

	// Terminal states never transition, even past expiry.
	reloaded = models.WorkspaceInvitation{}
	require.NoError(t, db.First(&reloaded, "id = ?", accepted.ID).Error)
	require.Equal(t, models.InvitationAccepted, reloaded.Status)
}

func TestPruneTerminalInvitations(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	now := time.Now().UTC()

	old := seedInvitation(t, db, models.InvitationExpired, now.Add(-60*24*time.Hour), "h1")
	require.NoError(t, db.Model(&models.WorkspaceInvitation{}).
		Where("id = ?", old.ID).
		Update("updated_at", now.Add(-45*24*time.Hour)).Error)
	pending := seedInvitation(t, db, models.InvitationPending, now.Add(-60*24*time.Hour), "h2")

	count, err := PruneTerminalInvitations(context.Background(), db, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	var remaining []models.WorkspaceInvitation
	require.NoError(t, db.Find(&remaining).Error)
	require.Len(t, remaining, 1)
	require.Equal(t, pending.ID, remaining[0].ID)
}

func TestSweeperRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	seedInvitation(t, db, models.InvitationPending, now.Add(-time.Hour), "h1")

	sweeper := NewSweeper(db, WithNow(func() time.Time { return now }), WithRetention(24*time.Hour))
	require.NoError(t, sweeper.RunOnce(context.Background()))

	var expired int64
	require.NoError(t, db.Model(&models.WorkspaceInvitation{}).
		Where("status = ?", models.InvitationExpired).
		Count(&expired).Error)
	require.EqualValues(t, 1, expired)
}
