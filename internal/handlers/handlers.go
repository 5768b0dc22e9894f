package handlers

import (
	"gorm.io/gorm"

	"github.com/tripwisego/feature-board/backend/internal/voting"
)

// Handler combines all handler types
type Handler struct {
	Feature *FeatureHandler
	Vote    *VoteHandler
	File    *FileHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, engine *voting.Engine) *Handler {
	return &Handler{
		Feature: NewFeatureHandler(db, engine),
		Vote:    NewVoteHandler(db, engine),
		File:    NewFileHandler(db),
	}
}
