package models

import "time"

// Feature request lifecycle statuses. Deletion is a soft transition to
// StatusDeleted; rows are never physically removed.
const (
	StatusActive     = "active"
	StatusDeleted    = "deleted"
	StatusCompleted  = "completed"
	StatusInProgress = "in_progress"
)

type Feature struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"not null" json:"description"`
	Votes       int       `gorm:"default:0" json:"votes"`
	CreatorID   string    `gorm:"default:anonymous" json:"creator_id"`
	Status      string    `gorm:"default:active;index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UpdateFeatureRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Votes       *int    `json:"votes"`
	Status      *string `json:"status"`
	CreatorID   *string `json:"creator_id"`
}
