package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andrelmts/taskhive/internal/models"
	apperrors "github.com/andrelmts/taskhive/pkg/errors"
)

// maxAttachmentBytes caps declared attachment sizes at 50 MiB.
const maxAttachmentBytes = 50 << 20

// ErrAttachmentNotFound indicates the attachment does not exist on the task.
var ErrAttachmentNotFound = apperrors.ErrNotFound.WithMessage("Attachment not found")

// AttachmentService manages attachment metadata. File bytes live in external
// object storage keyed by StorageKey.
type AttachmentService struct {
	db      *gorm.DB
	members *MembershipService
}

// NewAttachmentService constructs an AttachmentService instance.
func NewAttachmentService(db *gorm.DB, members *MembershipService) (*AttachmentService, error) {
	if db == nil {
		return nil, errors.New("attachment service: db is required")
	}
	if members == nil {
		return nil, errors.New("attachment service: membership service is required")
	}
	return &AttachmentService{db: db, members: members}, nil
}

// CreateAttachmentInput captures new attachment metadata.
type CreateAttachmentInput struct {
	FileName    string
	SizeBytes   int64
	ContentType string
}

// Create registers attachment metadata and mints a fresh storage key.
func (s *AttachmentService) Create(ctx context.Context, taskID, uploaderID string, input CreateAttachmentInput) (*models.Attachment, error) {
	ctx = ensureContext(ctx)

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, apperrors.NewBadRequest("file name is required")
	}
	if input.SizeBytes <= 0 || input.SizeBytes > maxAttachmentBytes {
		return nil, apperrors.NewBadRequest("file size must be between 1 byte and 50 MiB")
	}

	attachment := &models.Attachment{
		TaskID:      taskID,
		UploaderID:  uploaderID,
		FileName:    fileName,
		SizeBytes:   input.SizeBytes,
		ContentType: input.ContentType,
		StorageKey:  fmt.Sprintf("attachments/%s/%s", taskID, uuid.NewString()),
	}
	if err := s.db.WithContext(ctx).Create(attachment).Error; err != nil {
		return nil, fmt.Errorf("attachment service: create attachment: %w", err)
	}

	return attachment, nil
}

// List returns a task's attachments, newest first.
func (s *AttachmentService) List(ctx context.Context, taskID string) ([]models.Attachment, error) {
	ctx = ensureContext(ctx)

	var attachments []models.Attachment
	err := s.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&attachments).Error
	if err != nil {
		return nil, fmt.Errorf("attachment service: list attachments: %w", err)
	}

	return attachments, nil
}

// Delete removes attachment metadata. Allowed for the uploader, and for
// workspace owners and admins.
func (s *AttachmentService) Delete(ctx context.Context, workspaceID, taskID, attachmentID, actorID string) error {
	ctx = ensureContext(ctx)

	var attachment models.Attachment
	err := s.db.WithContext(ctx).
		Where("id = ? AND task_id = ?", attachmentID, taskID).
		First(&attachment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAttachmentNotFound
	}
	if err != nil {
		return fmt.Errorf("attachment service: load attachment: %w", err)
	}

	if attachment.UploaderID != actorID {
		if err := s.members.RequireRole(ctx, workspaceID, actorID, models.RoleOwner, models.RoleAdmin); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Delete(&attachment).Error; err != nil {
		return fmt.Errorf("attachment service: delete attachment: %w", err)
	}

	return nil
}
