package models

import "time"

// InvitationStatus tracks the invitation lifecycle. Accepted and expired are
// terminal; no transition ever leaves them.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
)

// Terminal reports whether the status permits no further transitions.
func (s InvitationStatus) Terminal() bool {
	return s == InvitationAccepted || s == InvitationExpired
}

// WorkspaceInvitation grants a one-time right to join a workspace with a
// pre-assigned role. The role is never owner.
type WorkspaceInvitation struct {
	BaseModel

	WorkspaceID  string           `gorm:"type:uuid;not null;index" json:"workspace_id"`
	InvitedEmail string           `gorm:"not null;index" json:"invited_email"`
	InvitedBy    string           `gorm:"type:uuid;not null" json:"invited_by"`
	Role         WorkspaceRole    `gorm:"type:varchar(16);not null" json:"role"`
	TokenHash    string           `gorm:"uniqueIndex;not null" json:"-"`
	Status       InvitationStatus `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	ExpiresAt    time.Time        `gorm:"not null;index" json:"expires_at"`

	Workspace *Workspace `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"workspace,omitempty"`
	Inviter   *User      `gorm:"foreignKey:InvitedBy" json:"inviter,omitempty"`
}
