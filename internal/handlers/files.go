package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tripwisego/feature-board/backend/internal/models"
)

const maxFileSize = 10 << 20 // 10MB

var allowedMimeTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/gif":          true,
	"image/webp":         true,
	"application/pdf":    true,
	"text/plain":         true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

type FileHandler struct {
	db *gorm.DB
}

func NewFileHandler(db *gorm.DB) *FileHandler {
	return &FileHandler{db: db}
}

func saveAttachment(db *gorm.DB, file *multipart.FileHeader, featureID, uploadedBy string) (*models.FileAttachment, error) {
	if file.Size > maxFileSize {
		return nil, errors.New("file size exceeds maximum limit of 10MB")
	}

	mimeType := file.Header.Get("Content-Type")
	if !allowedMimeTypes[mimeType] {
		return nil, errors.New("file type " + mimeType + " is not allowed")
	}

	src, err := file.Open()
	if err != nil {
		return nil, errors.New("failed to read uploaded file")
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, maxFileSize))
	if err != nil {
		return nil, errors.New("failed to read uploaded file")
	}

	attachment := models.FileAttachment{
		FeatureID:  featureID,
		FileName:   file.Filename,
		FileSize:   file.Size,
		MimeType:   mimeType,
		UploadedBy: uploadedBy,
		Content:    content,
	}

	if err := db.Create(&attachment).Error; err != nil {
		return nil, errors.New("failed to save attachment")
	}
	return &attachment, nil
}

// GetFeatureFiles handles GET /api/features/:id/files
func (h *FileHandler) GetFeatureFiles(c *gin.Context) {
	featureID := c.Param("id")

	var files []models.FileAttachment
	err := h.db.Where("feature_id = ?", featureID).
		Order("created_at desc").
		Find(&files).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to get feature files"})
		return
	}

	if files == nil {
		files = []models.FileAttachment{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": files})
}

// UploadFeatureFile handles POST /api/features/:id/files
func (h *FileHandler) UploadFeatureFile(c *gin.Context) {
	featureID := c.Param("id")

	var feature models.Feature
	if err := h.db.First(&feature, "id = ?", featureID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Feature not found"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No file provided"})
		return
	}

	uploadedBy := c.PostForm("uploadedBy")
	if uploadedBy == "" {
		uploadedBy = "anonymous"
	}

	attachment, err := saveAttachment(h.db, file, featureID, uploadedBy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "File uploaded successfully",
		"data":    attachment,
	})
}
