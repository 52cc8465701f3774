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

// ErrCommentNotFound indicates the comment does not exist on the task.
var ErrCommentNotFound = apperrors.ErrNotFound.WithMessage("Comment not found")

// CommentService manages task discussion threads.
type CommentService struct {
	db      *gorm.DB
	members *MembershipService
}

// NewCommentService constructs a CommentService instance.
func NewCommentService(db *gorm.DB, members *MembershipService) (*CommentService, error) {
	if db == nil {
		return nil, errors.New("comment service: db is required")
	}
	if members == nil {
		return nil, errors.New("comment service: membership service is required")
	}
	return &CommentService{db: db, members: members}, nil
}

// Create adds a comment authored by the caller.
func (s *CommentService) Create(ctx context.Context, taskID, authorID, body string) (*models.Comment, error) {
	ctx = ensureContext(ctx)

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewBadRequest("comment body is required")
	}

	comment := &models.Comment{
		TaskID:   taskID,
		AuthorID: authorID,
		Body:     body,
	}
	if err := s.db.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("comment service: create comment: %w", err)
	}

	return comment, nil
}

// List returns a task's comments with author display fields, oldest first.
func (s *CommentService) List(ctx context.Context, taskID string) ([]models.Comment, error) {
	ctx = ensureContext(ctx)

	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("comment service: list comments: %w", err)
	}

	return comments, nil
}

// Delete removes a comment. Allowed for the comment's author, and for
// workspace owners and admins.
func (s *CommentService) Delete(ctx context.Context, workspaceID, taskID, commentID, actorID string) error {
	ctx = ensureContext(ctx)

	var comment models.Comment
	err := s.db.WithContext(ctx).
		Where("id = ? AND task_id = ?", commentID, taskID).
		First(&comment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCommentNotFound
	}
	if err != nil {
		return fmt.Errorf("comment service: load comment: %w", err)
	}

	if comment.AuthorID != actorID {
		if err := s.members.RequireRole(ctx, workspaceID, actorID, models.RoleOwner, models.RoleAdmin); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Delete(&comment).Error; err != nil {
		return fmt.Errorf("comment service: delete comment: %w", err)
	}

	return nil
}
