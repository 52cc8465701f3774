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

// ErrTaskNotFound indicates the task does not exist in the project.
var ErrTaskNotFound = apperrors.ErrNotFound.WithMessage("Task not found")

// TaskService manages tasks within a project.
type TaskService struct {
	db *gorm.DB
}

// NewTaskService constructs a TaskService instance.
func NewTaskService(db *gorm.DB) (*TaskService, error) {
	if db == nil {
		return nil, errors.New("task service: db is required")
	}
	return &TaskService{db: db}, nil
}

// CreateTaskInput captures a task creation request.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	SprintID    *string
	AssigneeID  *string
	DueAt       *time.Time
}

// Create inserts a todo task at the end of the project's task ordering.
func (s *TaskService) Create(ctx context.Context, projectID string, input CreateTaskInput) (*models.Task, error) {
	ctx = ensureContext(ctx)

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewBadRequest("task title is required")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !validTaskPriority(priority) {
		return nil, apperrors.NewBadRequest("invalid task priority")
	}

	task := &models.Task{
		ProjectID:   projectID,
		SprintID:    input.SprintID,
		Title:       title,
		Description: input.Description,
		Status:      models.TaskTodo,
		Priority:    priority,
		AssigneeID:  input.AssigneeID,
		DueAt:       input.DueAt,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPosition int
		row := tx.Model(&models.Task{}).
			Where("project_id = ?", projectID).
			Select("COALESCE(MAX(position), -1)").
			Row()
		if err := row.Scan(&maxPosition); err != nil {
			return fmt.Errorf("task service: next position: %w", err)
		}
		task.Position = maxPosition + 1

		if err := tx.Create(task).Error; err != nil {
			return fmt.Errorf("task service: create task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// Get loads a task scoped to its project.
func (s *TaskService) Get(ctx context.Context, projectID, taskID string) (*models.Task, error) {
	ctx = ensureContext(ctx)

	var task models.Task
	err := s.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", taskID, projectID).
		First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("task service: load task: %w", err)
	}

	return &task, nil
}

// GetByID loads a task without project scoping. Used to resolve the owning
// project and workspace for authorization on task-rooted routes.
func (s *TaskService) GetByID(ctx context.Context, taskID string) (*models.Task, error) {
	ctx = ensureContext(ctx)

	var task models.Task
	err := s.db.WithContext(ctx).First(&task, "id = ?", taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("task service: load task: %w", err)
	}

	return &task, nil
}

// TaskFilter narrows a task listing.
type TaskFilter struct {
	Status     models.TaskStatus
	SprintID   *string
	AssigneeID *string
}

// List returns the project's tasks ordered by board position.
func (s *TaskService) List(ctx context.Context, projectID string, filter TaskFilter) ([]models.Task, error) {
	ctx = ensureContext(ctx)

	query := s.db.WithContext(ctx).Where("project_id = ?", projectID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SprintID != nil {
		query = query.Where("sprint_id = ?", *filter.SprintID)
	}
	if filter.AssigneeID != nil {
		query = query.Where("assignee_id = ?", *filter.AssigneeID)
	}

	var tasks []models.Task
	if err := query.Order("position ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task service: list tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTaskInput carries optional task updates.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *models.TaskPriority
	SprintID    *string
	AssigneeID  *string
	DueAt       *time.Time
}

// Update applies the provided fields to the task.
func (s *TaskService) Update(ctx context.Context, projectID, taskID string, input UpdateTaskInput) (*models.Task, error) {
	ctx = ensureContext(ctx)

	updates := map[string]any{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, apperrors.NewBadRequest("task title cannot be empty")
		}
		updates["title"] = title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Priority != nil {
		if !validTaskPriority(*input.Priority) {
			return nil, apperrors.NewBadRequest("invalid task priority")
		}
		updates["priority"] = *input.Priority
	}
	if input.SprintID != nil {
		if *input.SprintID == "" {
			updates["sprint_id"] = nil
		} else {
			updates["sprint_id"] = *input.SprintID
		}
	}
	if input.AssigneeID != nil {
		if *input.AssigneeID == "" {
			updates["assignee_id"] = nil
		} else {
			updates["assignee_id"] = *input.AssigneeID
		}
	}
	if input.DueAt != nil {
		updates["due_at"] = *input.DueAt
	}

	if len(updates) > 0 {
		result := s.db.WithContext(ctx).
			Model(&models.Task{}).
			Where("id = ? AND project_id = ?", taskID, projectID).
			Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("task service: update task: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrTaskNotFound
		}
	}

	return s.Get(ctx, projectID, taskID)
}

// Move updates a task's board status and position in one call.
func (s *TaskService) Move(ctx context.Context, projectID, taskID string, status models.TaskStatus, position int) (*models.Task, error) {
	ctx = ensureContext(ctx)

	switch status {
	case models.TaskTodo, models.TaskInProgress, models.TaskDone:
	default:
		return nil, apperrors.NewBadRequest("invalid task status")
	}
	if position < 0 {
		return nil, apperrors.NewBadRequest("position must not be negative")
	}

	result := s.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND project_id = ?", taskID, projectID).
		Updates(map[string]any{"status": status, "position": position})
	if result.Error != nil {
		return nil, fmt.Errorf("task service: move task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrTaskNotFound
	}

	return s.Get(ctx, projectID, taskID)
}

// Delete removes a task along with its comments, attachments, and time logs.
func (s *TaskService) Delete(ctx context.Context, projectID, taskID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND project_id = ?", taskID, projectID).
		Delete(&models.Task{})
	if result.Error != nil {
		return fmt.Errorf("task service: delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

func validTaskPriority(priority models.TaskPriority) bool {
	switch priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return true
	}
	return false
}
