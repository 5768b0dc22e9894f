package models

import "time"

// FileAttachment stores attachment metadata and content for a feature
// request. Content lives in the database rather than an object store.
type FileAttachment struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	FeatureID  string    `gorm:"index;not null" json:"feature_id"`
	FileName   string    `gorm:"not null" json:"file_name"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type"`
	UploadedBy string    `gorm:"default:anonymous" json:"uploaded_by"`
	Content    []byte    `gorm:"type:bytea" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}
