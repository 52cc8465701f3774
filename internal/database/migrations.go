package database

import (
	"gorm.io/gorm"

	"github.com/andrelmts/taskhive/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.WorkspaceMember{},
		&models.WorkspaceInvitation{},
		&models.Project{},
		&models.Sprint{},
		&models.Task{},
		&models.Comment{},
		&models.Attachment{},
		&models.TimeLog{},
		&models.RateCounter{},
	)
}
