package models

// Comment is a discussion entry on a task.
type Comment struct {
	BaseModel

	TaskID   string `gorm:"type:uuid;not null;index" json:"task_id"`
	AuthorID string `gorm:"type:uuid;not null" json:"author_id"`
	Body     string `gorm:"not null" json:"body"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
