package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/andrelmts/taskhive/internal/models"
	apperrors "github.com/andrelmts/taskhive/pkg/errors"
)

// ErrSprintNotFound indicates the sprint does not exist in the project.
var ErrSprintNotFound = apperrors.ErrNotFound.WithMessage("Sprint not found")

// SprintService manages time-boxed iterations within a project.
type SprintService struct {
	db *gorm.DB
}

// NewSprintService constructs a SprintService instance.
func NewSprintService(db *gorm.DB) (*SprintService, error) {
	if db == nil {
		return nil, errors.New("sprint service: db is required")
	}
	return &SprintService{db: db}, nil
}

// CreateSprintInput captures a sprint creation request.
type CreateSprintInput struct {
	Name     string
	StartsAt *time.Time
	EndsAt   *time.Time
}

// Create inserts a planned sprint into the project.
func (s *SprintService) Create(ctx context.Context, projectID string, input CreateSprintInput) (*models.Sprint, error) {
	ctx = ensureContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("sprint name is required")
	}
	if input.StartsAt != nil && input.EndsAt != nil && input.EndsAt.Before(*input.StartsAt) {
		return nil, apperrors.NewBadRequest("sprint end must not precede its start")
	}

	sprint := &models.Sprint{
		ProjectID: projectID,
		Name:      name,
		Status:    models.SprintPlanned,
		StartsAt:  input.StartsAt,
		EndsAt:    input.EndsAt,
	}
	if err := s.db.WithContext(ctx).Create(sprint).Error; err != nil {
		return nil, fmt.Errorf("sprint service: create sprint: %w", err)
	}

	return sprint, nil
}

// Get loads a sprint scoped to its project.
func (s *SprintService) Get(ctx context.Context, projectID, sprintID string) (*models.Sprint, error) {
	ctx = ensureContext(ctx)

	var sprint models.Sprint
	err := s.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", sprintID, projectID).
		First(&sprint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSprintNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sprint service: load sprint: %w", err)
	}

	return &sprint, nil
}

// List returns the project's sprints ordered by start date.
func (s *SprintService) List(ctx context.Context, projectID string) ([]models.Sprint, error) {
	ctx = ensureContext(ctx)

	var sprints []models.Sprint
	err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("starts_at ASC").
		Find(&sprints).Error
	if err != nil {
		return nil, fmt.Errorf("sprint service: list sprints: %w", err)
	}

	return sprints, nil
}

// UpdateSprintInput carries optional sprint updates.
type UpdateSprintInput struct {
	Name     *string
	Status   *models.SprintStatus
	StartsAt *time.Time
	EndsAt   *time.Time
}

// Update applies the provided fields to the sprint.
func (s *SprintService) Update(ctx context.Context, projectID, sprintID string, input UpdateSprintInput) (*models.Sprint, error) {
	ctx = ensureContext(ctx)

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewBadRequest("sprint name cannot be empty")
		}
		updates["name"] = name
	}
	if input.Status != nil {
		switch *input.Status {
		case models.SprintPlanned, models.SprintActive, models.SprintCompleted:
		default:
			return nil, apperrors.NewBadRequest("invalid sprint status")
		}
		updates["status"] = *input.Status
	}
	if input.StartsAt != nil {
		updates["starts_at"] = *input.StartsAt
	}
	if input.EndsAt != nil {
		updates["ends_at"] = *input.EndsAt
	}

	if len(updates) > 0 {
		result := s.db.WithContext(ctx).
			Model(&models.Sprint{}).
			Where("id = ? AND project_id = ?", sprintID, projectID).
			Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("sprint service: update sprint: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrSprintNotFound
		}
	}

	return s.Get(ctx, projectID, sprintID)
}

// Delete removes a sprint. Tasks scheduled into it fall back to the backlog
// through the SET NULL foreign key.
func (s *SprintService) Delete(ctx context.Context, projectID, sprintID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", sprintID, projectID).
		Delete(&models.Sprint{})
	if result.Error != nil {
		return fmt.Errorf("sprint service: delete sprint: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSprintNotFound
	}

	return nil
}
