package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tripwisego/feature-board/backend/internal/models"
	"github.com/tripwisego/feature-board/backend/internal/voting"
)

type VoteHandler struct {
	db     *gorm.DB
	engine *voting.Engine
}

func NewVoteHandler(db *gorm.DB, engine *voting.Engine) *VoteHandler {
	return &VoteHandler{db: db, engine: engine}
}

func engineErrorStatus(err error) int {
	if voting.BadRequest(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Vote handles POST /api/vote
func (h *VoteHandler) Vote(c *gin.Context) {
	var req models.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "featureId, voteType, and userId are required",
		})
		return
	}

	receipt, err := h.engine.VoteOnFeature(c.Request.Context(), req.FeatureID, req.VoteType, req.UserID)
	if err != nil {
		c.JSON(engineErrorStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Vote recorded successfully",
		"data":    receipt,
	})
}

// RetractVote handles DELETE /api/vote — cancels an existing vote and
// reconciles the feature tally.
func (h *VoteHandler) RetractVote(c *gin.Context) {
	var req struct {
		FeatureID string `json:"featureId"`
		UserID    string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "featureId and userId are required",
		})
		return
	}

	if err := h.engine.RetractVote(c.Request.Context(), req.FeatureID, req.UserID); err != nil {
		c.JSON(engineErrorStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Vote removed successfully",
		"data":    gin.H{"featureId": req.FeatureID, "userId": req.UserID},
	})
}

// GetUserVotes handles GET /api/users/:userId/votes
func (h *VoteHandler) GetUserVotes(c *gin.Context) {
	votes, err := h.engine.UserVotes(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.JSON(engineErrorStatus(err), gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": votes})
}

// GetStatistics handles GET /api/statistics — voting totals merged with
// feature and upload rollups, mirroring the board's original statistics
// document.
func (h *VoteHandler) GetStatistics(c *gin.Context) {
	votingStats, err := h.engine.VotingStatistics(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to get statistics"})
		return
	}

	data := gin.H{
		"voting":    votingStats,
		"features":  nil,
		"uploads":   nil,
		"timestamp": time.Now().UTC(),
	}

	if h.db != nil {
		var featureCount int64
		if err := h.db.Model(&models.Feature{}).
			Where("status = ?", models.StatusActive).
			Count(&featureCount).Error; err == nil {
			data["features"] = gin.H{
				"features": featureCount,
				"votes":    votingStats.TotalVotes,
			}
		}

		var uploadCount int64
		var uploadBytes int64
		if err := h.db.Model(&models.FileAttachment{}).Count(&uploadCount).Error; err == nil {
			h.db.Model(&models.FileAttachment{}).
				Select("COALESCE(SUM(file_size), 0)").
				Scan(&uploadBytes)
			data["uploads"] = gin.H{
				"totalFiles": uploadCount,
				"totalSize":  uploadBytes,
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}
