package models

import "time"

// SprintStatus enumerates sprint lifecycle states.
type SprintStatus string

const (
	SprintPlanned   SprintStatus = "planned"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
)

// Sprint is a time-boxed iteration within a project.
type Sprint struct {
	BaseModel

	ProjectID string       `gorm:"type:uuid;not null;index" json:"project_id"`
	Name      string       `gorm:"not null" json:"name"`
	Status    SprintStatus `gorm:"type:varchar(16);not null;default:planned" json:"status"`
	StartsAt  *time.Time   `json:"starts_at,omitempty"`
	EndsAt    *time.Time   `json:"ends_at,omitempty"`

	Tasks []Task `gorm:"foreignKey:SprintID" json:"tasks,omitempty"`
}
