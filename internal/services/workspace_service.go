package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/andrelmts/taskhive/internal/models"
	apperrors "github.com/andrelmts/taskhive/pkg/errors"
	"github.com/andrelmts/taskhive/pkg/logger"
	"github.com/andrelmts/taskhive/pkg/metrics"
)

// ErrWorkspaceNotFound indicates the workspace does not exist.
var ErrWorkspaceNotFound = apperrors.ErrNotFound.WithMessage("Workspace not found")

// WorkspaceService manages workspace lifecycle and ownership.
type WorkspaceService struct {
	db      *gorm.DB
	members *MembershipService

	// beforeTransferStep and afterTransferStep run around each transfer
	// step. Tests use them to inject failures and concurrent writes between
	// saga steps.
	beforeTransferStep func(step string)
	afterTransferStep  func(step string) error
}

// NewWorkspaceService constructs a WorkspaceService instance.
func NewWorkspaceService(db *gorm.DB, members *MembershipService) (*WorkspaceService, error) {
	if db == nil {
		return nil, errors.New("workspace service: db is required")
	}
	if members == nil {
		return nil, errors.New("workspace service: membership service is required")
	}
	return &WorkspaceService{db: db, members: members}, nil
}

// CreateWorkspaceInput captures a workspace creation request.
type CreateWorkspaceInput struct {
	Name        string
	Description string
}

// Create inserts the workspace, its owner membership, and moves the creator's
// last-active-workspace pointer in a single transaction.
func (s *WorkspaceService) Create(ctx context.Context, ownerID string, input CreateWorkspaceInput) (*models.Workspace, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("workspace name is required")
	}

	workspace := &models.Workspace{
		Name:        name,
		Description: input.Description,
		OwnerID:     ownerID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workspace).Error; err != nil {
			return fmt.Errorf("workspace service: create workspace: %w", err)
		}

		member := models.WorkspaceMember{
			WorkspaceID: workspace.ID,
			UserID:      ownerID,
			Role:        models.RoleOwner,
			JoinedAt:    time.Now().UTC(),
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("workspace service: create owner membership: %w", err)
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", ownerID).
			Update("last_active_workspace_id", workspace.ID).Error; err != nil {
			return fmt.Errorf("workspace service: set last active workspace: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return workspace, nil
}

// Get loads a workspace by ID.
func (s *WorkspaceService) Get(ctx context.Context, workspaceID string) (*models.Workspace, error) {
	ctx = ensureContext(ctx)

	var workspace models.Workspace
	err := s.db.WithContext(ctx).First(&workspace, "id = ?", workspaceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWorkspaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("workspace service: load workspace: %w", err)
	}

	return &workspace, nil
}

// ListForUser returns the workspaces the user belongs to, most recently
// accessed first.
func (s *WorkspaceService) ListForUser(ctx context.Context, userID string) ([]models.Workspace, error) {
	ctx = ensureContext(ctx)

	var workspaces []models.Workspace
	err := s.db.WithContext(ctx).
		Joins("JOIN workspace_members ON workspace_members.workspace_id = workspaces.id").
		Where("workspace_members.user_id = ?", userID).
		Order("workspace_members.last_accessed_at DESC").
		Find(&workspaces).Error
	if err != nil {
		return nil, fmt.Errorf("workspace service: list workspaces: %w", err)
	}

	return workspaces, nil
}

// UpdateWorkspaceInput carries optional workspace updates. Nil fields are
// left untouched.
type UpdateWorkspaceInput struct {
	Name        *string
	Description *string
}

// Update applies the provided fields to the workspace.
func (s *WorkspaceService) Update(ctx context.Context, workspaceID string, input UpdateWorkspaceInput) (*models.Workspace, error) {
	ctx = ensureContext(ctx)

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("workspace name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}

	if len(updates) > 0 {
		result := s.db.WithContext(ctx).
			Model(&models.Workspace{}).
			Where("id = ?", workspaceID).
			Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("workspace service: update workspace: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrWorkspaceNotFound
		}
	}

	return s.Get(ctx, workspaceID)
}

// Delete removes the workspace. Members, projects, and their children are
// removed through the cascading foreign keys.
func (s *WorkspaceService) Delete(ctx context.Context, workspaceID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Delete(&models.Workspace{}, "id = ?", workspaceID)
	if result.Error != nil {
		return fmt.Errorf("workspace service: delete workspace: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrWorkspaceNotFound
	}

	return nil
}

// TransferResult reports a completed ownership transfer.
type TransferResult struct {
	WorkspaceID string `json:"workspace_id"`
	OldOwnerID  string `json:"old_owner_id"`
	NewOwnerID  string `json:"new_owner_id"`
}

// transferStep is one leg of the ownership transfer saga. compensate must
// restore the exact pre-image its forward produced.
type transferStep struct {
	name       string
	forward    func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// TransferOwnership moves workspace ownership from the current owner to an
// existing member. The work runs as an ordered sequence of steps with
// per-step compensations: when a step fails, the completed steps are undone
// in reverse order and the original failure surfaces. Compensation failures
// are logged and swallowed, leaving the row for operator repair.
func (s *WorkspaceService) TransferOwnership(ctx context.Context, workspaceID, currentOwnerID, newOwnerID string) (*TransferResult, error) {
	ctx = ensureContext(ctx)

	if newOwnerID == currentOwnerID {
		return nil, apperrors.NewBadRequest("new owner must differ from the current owner")
	}

	workspace, err := s.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if workspace.OwnerID != currentOwnerID {
		metrics.OwnershipTransfers.WithLabelValues("forbidden").Inc()
		return nil, apperrors.ErrForbidden.WithMessage("Only the workspace owner can transfer ownership")
	}

	previousRole, isMember, err := s.members.RoleOf(ctx, workspaceID, newOwnerID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrMemberNotFound.WithMessage("The new owner must already be a workspace member")
	}

	steps := []transferStep{
		{
			// The conditional update doubles as the guard against concurrent
			// transfers: a second transfer racing this one finds owner_id
			// already changed and affects zero rows.
			name: "reassign_workspace_owner",
			forward: func(ctx context.Context) error {
				result := s.db.WithContext(ctx).
					Model(&models.Workspace{}).
					Where("id = ? AND owner_id = ?", workspaceID, currentOwnerID).
					Update("owner_id", newOwnerID)
				if result.Error != nil {
					return fmt.Errorf("workspace service: reassign owner: %w", result.Error)
				}
				if result.RowsAffected == 0 {
					return apperrors.ErrForbidden.WithMessage("Ownership changed concurrently, retry the transfer")
				}
				return nil
			},
			compensate: func(ctx context.Context) error {
				return s.db.WithContext(ctx).
					Model(&models.Workspace{}).
					Where("id = ? AND owner_id = ?", workspaceID, newOwnerID).
					Update("owner_id", currentOwnerID).Error
			},
		},
		{
			name: "promote_new_owner",
			forward: func(ctx context.Context) error {
				return s.db.WithContext(ctx).
					Model(&models.WorkspaceMember{}).
					Where("workspace_id = ? AND user_id = ?", workspaceID, newOwnerID).
					Update("role", models.RoleOwner).Error
			},
			compensate: func(ctx context.Context) error {
				return s.db.WithContext(ctx).
					Model(&models.WorkspaceMember{}).
					Where("workspace_id = ? AND user_id = ?", workspaceID, newOwnerID).
					Update("role", previousRole).Error
			},
		},
		{
			name: "demote_previous_owner",
			forward: func(ctx context.Context) error {
				return s.db.WithContext(ctx).
					Model(&models.WorkspaceMember{}).
					Where("workspace_id = ? AND user_id = ?", workspaceID, currentOwnerID).
					Update("role", models.RoleAdmin).Error
			},
			compensate: func(ctx context.Context) error {
				return s.db.WithContext(ctx).
					Model(&models.WorkspaceMember{}).
					Where("workspace_id = ? AND user_id = ?", workspaceID, currentOwnerID).
					Update("role", models.RoleOwner).Error
			},
		},
	}

	if err := s.runTransfer(ctx, workspaceID, steps); err != nil {
		metrics.OwnershipTransfers.WithLabelValues("failed").Inc()
		return nil, err
	}

	metrics.OwnershipTransfers.WithLabelValues("success").Inc()
	logger.WithModule("workspaces").Info("workspace ownership transferred",
		zap.String("workspace_id", workspaceID),
		zap.String("old_owner_id", currentOwnerID),
		zap.String("new_owner_id", newOwnerID),
	)

	return &TransferResult{
		WorkspaceID: workspaceID,
		OldOwnerID:  currentOwnerID,
		NewOwnerID:  newOwnerID,
	}, nil
}

func (s *WorkspaceService) runTransfer(ctx context.Context, workspaceID string, steps []transferStep) error {
	completed := make([]transferStep, 0, len(steps))

	for _, step := range steps {
		if s.beforeTransferStep != nil {
			s.beforeTransferStep(step.name)
		}
		err := step.forward(ctx)
		if err == nil && s.afterTransferStep != nil {
			err = s.afterTransferStep(step.name)
		}
		if err == nil {
			completed = append(completed, step)
			continue
		}

		for i := len(completed) - 1; i >= 0; i-- {
			if compErr := completed[i].compensate(ctx); compErr != nil {
				logger.WithModule("workspaces").Error("transfer compensation failed",
					zap.String("workspace_id", workspaceID),
					zap.String("step", completed[i].name),
					zap.Error(compErr),
				)
			}
		}

		return err
	}

	return nil
}
