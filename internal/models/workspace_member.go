package models

import "time"

// WorkspaceRole enumerates the roles a member may hold within a workspace.
type WorkspaceRole string

const (
	RoleOwner  WorkspaceRole = "owner"
	RoleAdmin  WorkspaceRole = "admin"
	RoleMember WorkspaceRole = "member"
)

// Valid reports whether the role is one of the known workspace roles.
func (r WorkspaceRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

// WorkspaceMember links a user to a workspace with a role. Exactly one member
// per workspace holds RoleOwner and it must match Workspace.OwnerID.
type WorkspaceMember struct {
	WorkspaceID string        `gorm:"primaryKey;type:uuid" json:"workspace_id"`
	UserID      string        `gorm:"primaryKey;type:uuid" json:"user_id"`
	Role        WorkspaceRole `gorm:"type:varchar(16);not null" json:"role"`

	JoinedAt       time.Time  `gorm:"not null" json:"joined_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`

	Workspace *Workspace `gorm:"foreignKey:WorkspaceID;constraint:OnDelete:CASCADE" json:"-"`
	User      *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}
