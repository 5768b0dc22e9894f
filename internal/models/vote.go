package models

import "time"

const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Vote model - tracks individual user votes on feature requests.
// The unique index on (feature_id, user_id) is the ledger invariant:
// at most one live record per pair, enforced by the database even if
// the engine's pre-check loses a race.
type Vote struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	FeatureID string    `gorm:"uniqueIndex:idx_votes_feature_user;not null" json:"feature_id"`
	UserID    string    `gorm:"uniqueIndex:idx_votes_feature_user;not null" json:"user_id"`
	VoteType  string    `gorm:"not null" json:"vote_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"timestamp"`
}

type VoteRequest struct {
	FeatureID string `json:"featureId"`
	VoteType  string `json:"voteType"`
	UserID    string `json:"userId"`
}
