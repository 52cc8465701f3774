package models

// Attachment stores metadata for a file uploaded against a task. The bytes
// themselves live in external object storage under StorageKey.
type Attachment struct {
	BaseModel

	TaskID      string `gorm:"type:uuid;not null;index" json:"task_id"`
	UploaderID  string `gorm:"type:uuid;not null" json:"uploader_id"`
	FileName    string `gorm:"not null" json:"file_name"`
	SizeBytes   int64  `gorm:"not null" json:"size_bytes"`
	ContentType string `json:"content_type"`
	StorageKey  string `gorm:"uniqueIndex;not null" json:"-"`

	Uploader *User `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
}
