package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/andrelmts/taskhive/internal/models"
	apperrors "github.com/andrelmts/taskhive/pkg/errors"
)

// ErrProjectNotFound indicates the project does not exist in the workspace.
var ErrProjectNotFound = apperrors.ErrNotFound.WithMessage("Project not found")

// ProjectService manages projects within a workspace.
type ProjectService struct {
	db *gorm.DB
}

// NewProjectService constructs a ProjectService instance.
func NewProjectService(db *gorm.DB) (*ProjectService, error) {
	if db == nil {
		return nil, errors.New("project service: db is required")
	}
	return &ProjectService{db: db}, nil
}

// CreateProjectInput captures a project creation request.
type CreateProjectInput struct {
	Name        string
	Description string
}

// Create inserts an active project into the workspace.
func (s *ProjectService) Create(ctx context.Context, workspaceID string, input CreateProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("project name is required")
	}

	project := &models.Project{
		WorkspaceID: workspaceID,
		Name:        name,
		Description: input.Description,
		Status:      models.ProjectActive,
	}
	if err := s.db.WithContext(ctx).Create(project).Error; err != nil {
		return nil, fmt.Errorf("project service: create project: %w", err)
	}

	return project, nil
}

// Get loads a project scoped to its workspace.
func (s *ProjectService) Get(ctx context.Context, workspaceID, projectID string) (*models.Project, error) {
	ctx = ensureContext(ctx)

	var project models.Project
	err := s.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ?", projectID, workspaceID).
		First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("project service: load project: %w", err)
	}

	return &project, nil
}

// GetByID loads a project without workspace scoping. Used to resolve the
// owning workspace for authorization on project-rooted routes.
func (s *ProjectService) GetByID(ctx context.Context, projectID string) (*models.Project, error) {
	ctx = ensureContext(ctx)

	var project models.Project
	err := s.db.WithContext(ctx).First(&project, "id = ?", projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("project service: load project: %w", err)
	}

	return &project, nil
}

// List returns the workspace's projects, newest first.
func (s *ProjectService) List(ctx context.Context, workspaceID string) ([]models.Project, error) {
	ctx = ensureContext(ctx)

	var projects []models.Project
	err := s.db.WithContext(ctx).
		Where("workspace_id = ?", workspaceID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("project service: list projects: %w", err)
	}

	return projects, nil
}

// UpdateProjectInput carries optional project updates.
type UpdateProjectInput struct {
	Name        *string
	Description *string
}

// Update applies the provided fields to the project.
func (s *ProjectService) Update(ctx context.Context, workspaceID, projectID string, input UpdateProjectInput) (*models.Project, error) {
	ctx = ensureContext(ctx)

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("project name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}

	if len(updates) > 0 {
		result := s.db.WithContext(ctx).
			Model(&models.Project{}).
			Where("id = ? AND workspace_id = ?", projectID, workspaceID).
			Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("project service: update project: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrProjectNotFound
		}
	}

	return s.Get(ctx, workspaceID, projectID)
}

// SetStatus archives or reactivates a project.
func (s *ProjectService) SetStatus(ctx context.Context, workspaceID, projectID string, status models.ProjectStatus) (*models.Project, error) {
	ctx = ensureContext(ctx)

	if status != models.ProjectActive && status != models.ProjectArchived {
		return nil, apperrors.NewBadRequest("invalid project status")
	}

	result := s.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ? AND workspace_id = ?", projectID, workspaceID).
		Update("status", status)
	if result.Error != nil {
		return nil, fmt.Errorf("project service: set status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrProjectNotFound
	}

	return s.Get(ctx, workspaceID, projectID)
}

// Delete removes a project and its children through cascading foreign keys.
func (s *ProjectService) Delete(ctx context.Context, workspaceID, projectID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ?", projectID, workspaceID).
		Delete(&models.Project{})
	if result.Error != nil {
		return fmt.Errorf("project service: delete project: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}

	return nil
}
