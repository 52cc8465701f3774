package models

import "time"

// TimeLog records time a user spent on a task.
type TimeLog struct {
	BaseModel

	TaskID   string    `gorm:"type:uuid;not null;index" json:"task_id"`
	UserID   string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Minutes  int       `gorm:"not null" json:"minutes"`
	Note     string    `json:"note"`
	LoggedAt time.Time `gorm:"not null" json:"logged_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
