package models

import "time"

// TaskStatus enumerates kanban column states.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
)

// TaskPriority enumerates relative task importance.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Task is a unit of work inside a project, optionally scheduled into a sprint.
type Task struct {
	BaseModel

	ProjectID   string       `gorm:"type:uuid;not null;index" json:"project_id"`
	SprintID    *string      `gorm:"type:uuid;index" json:"sprint_id,omitempty"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `gorm:"type:varchar(16);not null;default:todo" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(8);not null;default:medium" json:"priority"`
	AssigneeID  *string      `gorm:"type:uuid;index" json:"assignee_id,omitempty"`
	Position    int          `gorm:"not null;default:0" json:"position"`
	DueAt       *time.Time   `json:"due_at,omitempty"`

	Sprint      *Sprint      `gorm:"foreignKey:SprintID;constraint:OnDelete:SET NULL" json:"-"`
	Assignee    *User        `gorm:"foreignKey:AssigneeID;constraint:OnDelete:SET NULL" json:"assignee,omitempty"`
	Comments    []Comment    `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
	TimeLogs    []TimeLog    `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"time_logs,omitempty"`
}
