package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrelmts/taskhive/internal/models"
	apperrors "github.com/andrelmts/taskhive/pkg/errors"
)

// maxTimeLogMinutes rejects entries longer than a day.
const maxTimeLogMinutes = 24 * 60

// TimeLogService records time spent against tasks.
type TimeLogService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewTimeLogService constructs a TimeLogService instance.
func NewTimeLogService(db *gorm.DB) (*TimeLogService, error) {
	if db == nil {
		return nil, errors.New("timelog service: db is required")
	}
	return &TimeLogService{db: db, now: time.Now}, nil
}

// CreateTimeLogInput captures a time entry.
type CreateTimeLogInput struct {
	Minutes  int
	Note     string
	LoggedAt *time.Time
}

// Create records minutes spent by the user on a task. LoggedAt defaults to now.
func (s *TimeLogService) Create(ctx context.Context, taskID, userID string, input CreateTimeLogInput) (*models.TimeLog, error) {
	ctx = ensureContext(ctx)

	if input.Minutes <= 0 || input.Minutes > maxTimeLogMinutes {
		return nil, apperrors.NewBadRequest("minutes must be between 1 and 1440")
	}

	loggedAt := s.now().UTC()
	if input.LoggedAt != nil {
		loggedAt = input.LoggedAt.UTC()
	}

	entry := &models.TimeLog{
		TaskID:   taskID,
		UserID:   userID,
		Minutes:  input.Minutes,
		Note:     input.Note,
		LoggedAt: loggedAt,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("timelog service: create entry: %w", err)
	}

	return entry, nil
}

// List returns a task's time entries, most recent first.
func (s *TimeLogService) List(ctx context.Context, taskID string) ([]models.TimeLog, error) {
	ctx = ensureContext(ctx)

	var entries []models.TimeLog
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("task_id = ?", taskID).
		Order("logged_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("timelog service: list entries: %w", err)
	}

	return entries, nil
}

// TotalMinutes sums the recorded minutes for a task.
func (s *TimeLogService) TotalMinutes(ctx context.Context, taskID string) (int, error) {
	ctx = ensureContext(ctx)

	var total int
	err := s.db.WithContext(ctx).
		Model(&models.TimeLog{}).
		Where("task_id = ?", taskID).
		Select("COALESCE(SUM(minutes), 0)").
		Row().Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("timelog service: total minutes: %w", err)
	}

	return total, nil
}
