package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripwisego/feature-board/backend/internal/models"
	"github.com/tripwisego/feature-board/backend/internal/voting"
)

type FeatureHandler struct {
	db     *gorm.DB
	engine *voting.Engine
}

func NewFeatureHandler(db *gorm.DB, engine *voting.Engine) *FeatureHandler {
	return &FeatureHandler{db: db, engine: engine}
}

// UploadFeature handles POST /api/upload-feature — creates a feature
// request from a multipart form, with an optional file attachment.
func (h *FeatureHandler) UploadFeature(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	description := strings.TrimSpace(c.PostForm("description"))
	creatorID := c.PostForm("creatorId")
	if creatorID == "" {
		creatorID = "anonymous"
	}

	if title == "" || description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Title and description are required"})
		return
	}
	if len(title) < 3 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Title must be at least 3 characters long"})
		return
	}
	if len(description) < 10 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Description must be at least 10 characters long"})
		return
	}

	feature := models.Feature{
		ID:          "feature-" + uuid.NewString(),
		Title:       title,
		Description: description,
		Votes:       0,
		CreatorID:   creatorID,
		Status:      models.StatusActive,
	}

	if err := h.db.Create(&feature).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to save feature request"})
		return
	}

	// Attachment is optional; a failed upload does not fail the request.
	var fileUpload gin.H
	if file, err := c.FormFile("attachment"); err == nil {
		attachment, err := saveAttachment(h.db, file, feature.ID, creatorID)
		if err != nil {
			fileUpload = gin.H{"success": false, "error": err.Error()}
		} else {
			fileUpload = gin.H{"success": true, "data": attachment}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Feature request saved successfully",
		"data":       feature,
		"fileUpload": fileUpload,
	})
}

// GetFeatures handles GET /api/features — active features, newest first.
func (h *FeatureHandler) GetFeatures(c *gin.Context) {
	var features []models.Feature
	err := h.db.Where("status = ?", models.StatusActive).
		Order("created_at desc").
		Find(&features).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch feature requests"})
		return
	}

	if features == nil {
		features = []models.Feature{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": features})
}

// GetFeature handles GET /api/features/:id — a single active feature
// with live up/down counts from the ledger.
func (h *FeatureHandler) GetFeature(c *gin.Context) {
	featureID := c.Param("id")

	var feature models.Feature
	err := h.db.Where("id = ? AND status = ?", featureID, models.StatusActive).
		First(&feature).Error
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Feature not found"})
		return
	}

	counts, err := h.engine.FeatureVotes(c.Request.Context(), featureID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch feature votes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":          feature.ID,
			"title":       feature.Title,
			"description": feature.Description,
			"votes":       feature.Votes,
			"creator_id":  feature.CreatorID,
			"status":      feature.Status,
			"created_at":  feature.CreatedAt,
			"updated_at":  feature.UpdatedAt,
			"upvotes":     counts.UpVotes,
			"downvotes":   counts.DownVotes,
		},
	})
}

// UpdateFeature handles PUT /api/features/:id — partial update.
func (h *FeatureHandler) UpdateFeature(c *gin.Context) {
	featureID := c.Param("id")

	var input models.UpdateFeatureRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	var feature models.Feature
	if err := h.db.First(&feature, "id = ?", featureID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Feature not found"})
		return
	}

	if input.Title != nil {
		feature.Title = *input.Title
	}
	if input.Description != nil {
		feature.Description = *input.Description
	}
	if input.Votes != nil {
		feature.Votes = *input.Votes
	}
	if input.Status != nil {
		feature.Status = *input.Status
	}
	if input.CreatorID != nil {
		feature.CreatorID = *input.CreatorID
	}

	if err := h.db.Save(&feature).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update feature"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Feature updated successfully",
		"data":    feature,
	})
}

// DeleteFeature handles DELETE /api/features/:id — soft delete. Vote
// records for the feature stay in the ledger untouched.
func (h *FeatureHandler) DeleteFeature(c *gin.Context) {
	featureID := c.Param("id")

	var feature models.Feature
	if err := h.db.First(&feature, "id = ?", featureID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Feature not found"})
		return
	}

	feature.Status = models.StatusDeleted
	if err := h.db.Save(&feature).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete feature"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Feature deleted successfully",
		"data":    gin.H{"id": featureID},
	})
}
