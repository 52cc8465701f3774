package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/andrelmts/taskhive/internal/models"
	"github.com/andrelmts/taskhive/pkg/crypto"
	apperrors "github.com/andrelmts/taskhive/pkg/errors"
	"github.com/andrelmts/taskhive/pkg/logger"
	"github.com/andrelmts/taskhive/pkg/mail"
	"github.com/andrelmts/taskhive/pkg/metrics"
)

const (
	defaultInvitationExpiry     = 7 * 24 * time.Hour
	defaultInvitationTokenBytes = 48
)

var (
	// ErrInvitationNotFound indicates no invitation matches the provided token.
	ErrInvitationNotFound = apperrors.New("INVITATION_NOT_FOUND", "Invitation not found", http.StatusNotFound)
	// ErrInvitationExpired indicates the invitation is past its expiry.
	ErrInvitationExpired = apperrors.New("INVITATION_EXPIRED", "This invitation has expired", http.StatusGone)
	// ErrInvitationAccepted signals the invitation has already been redeemed.
	ErrInvitationAccepted = apperrors.New("INVITATION_ACCEPTED", "This invitation has already been accepted", http.StatusGone)
	// ErrInvitationEmailMismatch rejects acceptance by a subject whose email differs from the invited address.
	ErrInvitationEmailMismatch = apperrors.New("INVITATION_EMAIL_MISMATCH", "This invitation was issued to a different email address", http.StatusForbidden)
	// ErrAlreadyWorkspaceMember reports the subject already belongs to the workspace.
	ErrAlreadyWorkspaceMember = apperrors.New("ALREADY_MEMBER", "You are already a member of this workspace", http.StatusConflict)
)

// InvitationOption customises InvitationService behaviour.
type InvitationOption func(*InvitationService)

// WithInvitationBaseURL configures the base URL used to build accept links.
func WithInvitationBaseURL(url string) InvitationOption {
	return func(s *InvitationService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithInvitationExpiry overrides the invitation lifetime.
func WithInvitationExpiry(d time.Duration) InvitationOption {
	return func(s *InvitationService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithInvitationTokenSize adjusts the random token length in bytes.
func WithInvitationTokenSize(size int) InvitationOption {
	return func(s *InvitationService) {
		if size > 0 {
			s.tokenLength = size
		}
	}
}

// WithInvitationClock injects a custom clock primarily for testing.
func WithInvitationClock(clock func() time.Time) InvitationOption {
	return func(s *InvitationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// InvitationService manages the workspace invitation lifecycle: creation,
// preview, lazy expiry, and single-use acceptance.
type InvitationService struct {
	db          *gorm.DB
	members     *MembershipService
	mailer      mail.Mailer
	baseURL     string
	expiry      time.Duration
	tokenLength int
	now         func() time.Time
}

// NewInvitationService constructs an InvitationService with the provided dependencies.
func NewInvitationService(db *gorm.DB, members *MembershipService, mailer mail.Mailer, opts ...InvitationOption) (*InvitationService, error) {
	if db == nil {
		return nil, errors.New("invitation service: db is required")
	}
	if members == nil {
		return nil, errors.New("invitation service: membership service is required")
	}

	service := &InvitationService{
		db:          db,
		members:     members,
		mailer:      mailer,
		expiry:      defaultInvitationExpiry,
		tokenLength: defaultInvitationTokenBytes,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// CreateInvitationInput captures a new invitation request.
type CreateInvitationInput struct {
	WorkspaceID  string
	InvitedEmail string
	Role         models.WorkspaceRole
	InviterID    string
}

// Create issues a new pending invitation and dispatches the invitation email.
// Email delivery is best-effort: a failure is logged and never rolls back the
// invitation. The raw token is returned exactly once.
func (s *InvitationService) Create(ctx context.Context, input CreateInvitationInput) (*models.WorkspaceInvitation, string, error) {
	ctx = ensureContext(ctx)

	email := strings.TrimSpace(input.InvitedEmail)
	if email == "" {
		return nil, "", apperrors.NewBadRequest("invited email is required")
	}

	if input.Role != models.RoleAdmin && input.Role != models.RoleMember {
		return nil, "", apperrors.NewBadRequest("invitation role must be admin or member")
	}

	rawToken, err := crypto.GenerateToken(s.tokenLength)
	if err != nil {
		return nil, "", fmt.Errorf("invitation service: generate token: %w", err)
	}

	now := s.now()
	invitation := models.WorkspaceInvitation{
		WorkspaceID:  input.WorkspaceID,
		InvitedEmail: email,
		InvitedBy:    input.InviterID,
		Role:         input.Role,
		TokenHash:    tokenHash(rawToken),
		Status:       models.InvitationPending,
		ExpiresAt:    now.Add(s.expiry),
	}

	if err := s.db.WithContext(ctx).Create(&invitation).Error; err != nil {
		return nil, "", fmt.Errorf("invitation service: create invitation: %w", err)
	}

	metrics.InvitationEvents.WithLabelValues("created").Inc()
	s.sendInvitationEmail(ctx, &invitation, rawToken)

	return &invitation, rawToken, nil
}

// InvitationDetails is the invitation preview joined with display fields.
type InvitationDetails struct {
	ID            string                  `json:"id"`
	WorkspaceID   string                  `json:"workspace_id"`
	WorkspaceName string                  `json:"workspace_name"`
	InvitedByName string                  `json:"invited_by_name"`
	InvitedEmail  string                  `json:"invited_email"`
	Role          models.WorkspaceRole    `json:"role"`
	Status        models.InvitationStatus `json:"status"`
	ExpiresAt     time.Time               `json:"expires_at"`
	AlreadyMember bool                    `json:"already_member"`
}

// Get previews an invitation by token. An invitation past its expiry is
// transitioned to expired before the expiry error is returned; a redeemed
// invitation reports its terminal state. viewerID may be empty for anonymous
// callers.
func (s *InvitationService) Get(ctx context.Context, token, viewerID string) (*InvitationDetails, error) {
	ctx = ensureContext(ctx)

	invitation, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.checkLifecycle(ctx, invitation); err != nil {
		return nil, err
	}

	details := &InvitationDetails{
		ID:           invitation.ID,
		WorkspaceID:  invitation.WorkspaceID,
		InvitedEmail: invitation.InvitedEmail,
		Role:         invitation.Role,
		Status:       invitation.Status,
		ExpiresAt:    invitation.ExpiresAt,
	}
	if invitation.Workspace != nil {
		details.WorkspaceName = invitation.Workspace.Name
	}
	if invitation.Inviter != nil {
		details.InvitedByName = invitation.Inviter.Name
	}

	if strings.TrimSpace(viewerID) != "" {
		_, isMember, err := s.members.RoleOf(ctx, invitation.WorkspaceID, viewerID)
		if err != nil {
			return nil, err
		}
		details.AlreadyMember = isMember
	}

	return details, nil
}

// Subject identifies the authenticated caller accepting an invitation.
type Subject struct {
	ID    string
	Email string
}

// AcceptResult reports a successful acceptance.
type AcceptResult struct {
	WorkspaceID string               `json:"workspace_id"`
	Role        models.WorkspaceRole `json:"role"`
}

// Accept redeems an invitation for the subject. The resolution order is fixed:
// not-found, expiry, already-accepted, email mismatch, existing membership,
// then the join itself. When several conditions hold at once the earliest in
// that order wins.
func (s *InvitationService) Accept(ctx context.Context, token string, subject Subject) (*AcceptResult, error) {
	ctx = ensureContext(ctx)

	if strings.TrimSpace(subject.ID) == "" {
		return nil, apperrors.ErrUnauthorized
	}

	invitation, err := s.findByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.checkLifecycle(ctx, invitation); err != nil {
		return nil, err
	}

	// Case-sensitive comparison: the invitation is bound to the exact address
	// it was issued for.
	if subject.Email != invitation.InvitedEmail {
		metrics.InvitationEvents.WithLabelValues("rejected").Inc()
		return nil, ErrInvitationEmailMismatch.WithDetails(map[string]string{
			"invited_email": invitation.InvitedEmail,
			"your_email":    subject.Email,
		})
	}

	_, isMember, err := s.members.RoleOf(ctx, invitation.WorkspaceID, subject.ID)
	if err != nil {
		return nil, err
	}
	if isMember {
		// The token is spent even though no membership was created, so a
		// retried accept reports the terminal state rather than re-running
		// the email and membership checks.
		if err := s.markAccepted(ctx, invitation); err != nil {
			return nil, err
		}
		return nil, ErrAlreadyWorkspaceMember
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		member := models.WorkspaceMember{
			WorkspaceID: invitation.WorkspaceID,
			UserID:      subject.ID,
			Role:        invitation.Role,
			JoinedAt:    s.now().UTC(),
		}
		if err := tx.Create(&member).Error; err != nil {
			return fmt.Errorf("invitation service: create member: %w", err)
		}

		result := tx.Model(&models.WorkspaceInvitation{}).
			Where("id = ? AND status = ?", invitation.ID, models.InvitationPending).
			Update("status", models.InvitationAccepted)
		if result.Error != nil {
			return fmt.Errorf("invitation service: mark accepted: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrInvitationAccepted
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", subject.ID).
			Update("last_active_workspace_id", invitation.WorkspaceID).Error; err != nil {
			return fmt.Errorf("invitation service: set last active workspace: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.InvitationEvents.WithLabelValues("accepted").Inc()

	return &AcceptResult{
		WorkspaceID: invitation.WorkspaceID,
		Role:        invitation.Role,
	}, nil
}

// ListByWorkspace returns the pending invitations for a workspace, newest first.
func (s *InvitationService) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.WorkspaceInvitation, error) {
	ctx = ensureContext(ctx)

	var invitations []models.WorkspaceInvitation
	err := s.db.WithContext(ctx).
		Where("workspace_id = ? AND status = ?", workspaceID, models.InvitationPending).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, fmt.Errorf("invitation service: list invitations: %w", err)
	}

	return invitations, nil
}

// Delete cancels a pending invitation. Terminal invitations cannot be deleted.
func (s *InvitationService) Delete(ctx context.Context, workspaceID, invitationID string) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("id = ? AND workspace_id = ? AND status = ?", invitationID, workspaceID, models.InvitationPending).
		Delete(&models.WorkspaceInvitation{})
	if result.Error != nil {
		return fmt.Errorf("invitation service: delete invitation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvitationNotFound
	}

	return nil
}

func (s *InvitationService) findByToken(ctx context.Context, token string) (*models.WorkspaceInvitation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvitationNotFound
	}

	var invitation models.WorkspaceInvitation
	err := s.db.WithContext(ctx).
		Preload("Workspace").
		Preload("Inviter").
		Where("token_hash = ?", tokenHash(token)).
		First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invitation service: find invitation: %w", err)
	}

	return &invitation, nil
}

// checkLifecycle enforces the expiry-before-accepted ordering and lazily
// persists the pending-to-expired transition.
func (s *InvitationService) checkLifecycle(ctx context.Context, invitation *models.WorkspaceInvitation) error {
	if invitation.Status == models.InvitationExpired {
		return ErrInvitationExpired
	}

	if s.now().After(invitation.ExpiresAt) {
		if invitation.Status == models.InvitationPending {
			if err := s.db.WithContext(ctx).
				Model(&models.WorkspaceInvitation{}).
				Where("id = ? AND status = ?", invitation.ID, models.InvitationPending).
				Update("status", models.InvitationExpired).Error; err != nil {
				return fmt.Errorf("invitation service: mark expired: %w", err)
			}
			invitation.Status = models.InvitationExpired
			metrics.InvitationEvents.WithLabelValues("expired").Inc()
			return ErrInvitationExpired
		}
		// An accepted invitation past its expiry stays accepted: terminal
		// states never transition.
	}

	if invitation.Status == models.InvitationAccepted {
		return ErrInvitationAccepted
	}

	return nil
}

func (s *InvitationService) markAccepted(ctx context.Context, invitation *models.WorkspaceInvitation) error {
	result := s.db.WithContext(ctx).
		Model(&models.WorkspaceInvitation{}).
		Where("id = ? AND status = ?", invitation.ID, models.InvitationPending).
		Update("status", models.InvitationAccepted)
	if result.Error != nil {
		return fmt.Errorf("invitation service: mark accepted: %w", result.Error)
	}

	invitation.Status = models.InvitationAccepted
	return nil
}

func (s *InvitationService) sendInvitationEmail(ctx context.Context, invitation *models.WorkspaceInvitation, rawToken string) {
	if s.mailer == nil {
		return
	}

	message := mail.Message{
		To:      []string{invitation.InvitedEmail},
		Subject: "You've been invited to a TaskHive workspace",
		Body:    s.invitationBody(invitation, rawToken),
		HTML:    true,
	}

	if err := s.mailer.Send(ctx, message); err != nil && !errors.Is(err, mail.ErrSMTPDisabled) {
		logger.WithModule("invitations").Warn("invitation email delivery failed",
			zap.String("invitation_id", invitation.ID),
			zap.Error(err),
		)
	}
}

func (s *InvitationService) invitationBody(invitation *models.WorkspaceInvitation, rawToken string) string {
	link := rawToken
	if s.baseURL != "" {
		link = fmt.Sprintf("%s/invitations/%s", s.baseURL, rawToken)
	}

	return fmt.Sprintf(
		"<p>Hello,</p>"+
			"<p>You have been invited to join a workspace on TaskHive as a %s.</p>"+
			"<p><a href=%q>Accept the invitation</a></p>"+
			"<p>This invitation expires on %s. If you did not expect this email, you can ignore it.</p>",
		invitation.Role, link, invitation.ExpiresAt.UTC().Format("January 2, 2006"),
	)
}

func tokenHash(token string) string {
	checksum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(checksum[:])
}
