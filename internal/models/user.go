package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User describes an authenticated platform user.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Name     string `gorm:"not null" json:"name"`
	Password string `gorm:"not null" json:"-"`

	AvatarURL string `json:"avatar_url"`

	// LastActiveWorkspaceID points at the workspace the user most recently joined
	// or worked in. Updated when accepting an invitation or touching a workspace.
	LastActiveWorkspaceID *string    `gorm:"type:uuid" json:"last_active_workspace_id,omitempty"`
	LastActiveWorkspace   *Workspace `gorm:"foreignKey:LastActiveWorkspaceID;constraint:OnDelete:SET NULL" json:"-"`

	Memberships []WorkspaceMember `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
