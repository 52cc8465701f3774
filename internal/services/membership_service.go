package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/andrelmts/taskhive/internal/models"
	apperrors "github.com/andrelmts/taskhive/pkg/errors"
)

// memberListCap bounds the member listing to protect against unbounded scans.
const memberListCap = 100

var (
	// ErrMemberNotFound indicates the user has no membership in the workspace.
	ErrMemberNotFound = apperrors.New("MEMBER_NOT_FOUND", "User is not a member of the workspace", http.StatusNotFound)
	// ErrMemberAlreadyExists signals the user already belongs to the workspace.
	ErrMemberAlreadyExists = apperrors.New("MEMBER_EXISTS", "User is already a member of the workspace", http.StatusConflict)
	// ErrOwnerImmutable rejects operations that would remove or demote the owner directly.
	ErrOwnerImmutable = apperrors.New("OWNER_IMMUTABLE", "The workspace owner cannot be removed; transfer ownership first", http.StatusBadRequest)
)

// MemberView is a member row joined with display fields from the user record.
type MemberView struct {
	ID             string               `json:"id"`
	WorkspaceID    string               `json:"workspace_id"`
	UserID         string               `json:"user_id"`
	Role           models.WorkspaceRole `json:"role"`
	JoinedAt       time.Time            `json:"joined_at"`
	LastAccessedAt *time.Time           `json:"last_accessed_at,omitempty"`
	UserName       string               `json:"user_name"`
	UserEmail      string               `json:"user_email"`
	UserAvatarURL  string               `json:"user_avatar_url"`
}

// MembershipService is the sole authorization primitive for workspace-scoped
// operations: no workspace operation proceeds without an explicit membership
// check through it.
type MembershipService struct {
	db *gorm.DB
	// reader is a dedicated session used for role lookups so authorization
	// decisions never flow through request-scoped query hooks or scopes
	// applied to the general-purpose handle.
	reader *gorm.DB
}

// NewMembershipService constructs a MembershipService instance.
func NewMembershipService(db *gorm.DB) (*MembershipService, error) {
	if db == nil {
		return nil, errors.New("membership service: db is required")
	}
	return &MembershipService{
		db:     db,
		reader: db.Session(&gorm.Session{NewDB: true}),
	}, nil
}

// RoleOf returns the member's role in the workspace. The second return is
// false when no membership row exists.
func (s *MembershipService) RoleOf(ctx context.Context, workspaceID, userID string) (models.WorkspaceRole, bool, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(workspaceID) == "" || strings.TrimSpace(userID) == "" {
		return "", false, nil
	}

	var member models.WorkspaceMember
	err := s.reader.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("membership service: load role: %w", err)
	}

	return member.Role, true, nil
}

// RequireRole fails with Forbidden when the caller's role is absent or not in
// the allowed set. An empty allowed set always fails.
func (s *MembershipService) RequireRole(ctx context.Context, workspaceID, userID string, allowed ...models.WorkspaceRole) error {
	role, ok, err := s.RoleOf(ctx, workspaceID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrForbidden
	}

	for _, candidate := range allowed {
		if role == candidate {
			return nil
		}
	}

	return apperrors.ErrForbidden
}

// ListMembers returns workspace members with user display fields, ordered by
// join time and capped at 100 rows.
func (s *MembershipService) ListMembers(ctx context.Context, workspaceID string) ([]MemberView, error) {
	ctx = ensureContext(ctx)

	var rows []MemberView
	err := s.db.WithContext(ctx).
		Table("workspace_members").
		Select("workspace_members.workspace_id, workspace_members.user_id, workspace_members.role, "+
			"workspace_members.joined_at, workspace_members.last_accessed_at, "+
			"users.name AS user_name, users.email AS user_email, users.avatar_url AS user_avatar_url").
		Joins("JOIN users ON users.id = workspace_members.user_id").
		Where("workspace_members.workspace_id = ?", workspaceID).
		Order("workspace_members.joined_at ASC").
		Limit(memberListCap).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("membership service: list members: %w", err)
	}

	for i := range rows {
		rows[i].ID = rows[i].WorkspaceID + ":" + rows[i].UserID
	}

	return rows, nil
}

// AddMember inserts a membership row. Used by invitation acceptance and
// workspace creation; it does not enforce caller authorization.
func (s *MembershipService) AddMember(ctx context.Context, workspaceID, userID string, role models.WorkspaceRole) (*models.WorkspaceMember, error) {
	ctx = ensureContext(ctx)

	if !role.Valid() {
		return nil, apperrors.NewBadRequest("invalid workspace role")
	}

	member := &models.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
		JoinedAt:    time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(member).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrMemberAlreadyExists
		}
		return nil, fmt.Errorf("membership service: add member: %w", err)
	}

	return member, nil
}

// RemoveMember deletes a membership row. The owner can never be removed.
func (s *MembershipService) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	ctx = ensureContext(ctx)

	var member models.WorkspaceMember
	err := s.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrMemberNotFound
	}
	if err != nil {
		return fmt.Errorf("membership service: load member: %w", err)
	}

	if member.Role == models.RoleOwner {
		return ErrOwnerImmutable
	}

	if err := s.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Delete(&models.WorkspaceMember{}).Error; err != nil {
		return fmt.Errorf("membership service: remove member: %w", err)
	}

	return nil
}

// TouchLastAccessed records workspace activity for the member and moves the
// user's last-active-workspace pointer.
func (s *MembershipService) TouchLastAccessed(ctx context.Context, workspaceID, userID string) error {
	ctx = ensureContext(ctx)

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).
		Model(&models.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Update("last_accessed_at", now).Error; err != nil {
		return fmt.Errorf("membership service: touch member: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_active_workspace_id", workspaceID).Error; err != nil {
		return fmt.Errorf("membership service: update last active workspace: %w", err)
	}

	return nil
}
