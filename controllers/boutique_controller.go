package controllers

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"boutique-service/database"
	"boutique-service/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetBoutiqueImages lists the workshop gallery in display order.
func GetBoutiqueImages(c *gin.Context) {
	rows, err := database.DB.Query(
		"SELECT id, image_path, display_order, created_at FROM boutique_images ORDER BY display_order ASC, id ASC")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer func() { _ = rows.Close() }()

	images := make([]models.BoutiqueImage, 0)
	for rows.Next() {
		var img models.BoutiqueImage
		if err := rows.Scan(&img.ID, &img.ImagePath, &img.DisplayOrder, &img.CreatedAt); err != nil {
			log.Printf("Error scanning boutique image row: %v", err)
			continue
		}
		images = append(images, img)
	}

	c.JSON(http.StatusOK, images)
}

// AddBoutiqueImage uploads one gallery photo and appends it to the end
// of the display order.
func AddBoutiqueImage(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image requise"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format d'image non supporté"})
		return
	}
	if file.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image trop volumineuse (5 Mo max)"})
		return
	}

	var maxOrder int
	if err := database.DB.QueryRow(
		"SELECT COALESCE(MAX(display_order), 0) FROM boutique_images").Scan(&maxOrder); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	name := uuid.New().String() + ext
	if err := os.MkdirAll(cfg.BoutiqueImgDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'enregistrement de l'image"})
		return
	}
	if err := c.SaveUploadedFile(file, filepath.Join(cfg.BoutiqueImgDir, name)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de l'enregistrement de l'image"})
		return
	}

	imagePath := "/images/boutique/" + name
	result, err := database.DB.Exec(
		"INSERT INTO boutique_images (image_path, display_order) VALUES (?, ?)",
		imagePath, maxOrder+1)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	id, _ := result.LastInsertId()
	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"id":            id,
		"image_path":    imagePath,
		"display_order": maxOrder + 1,
	})
}

// DeleteBoutiqueImage removes a gallery photo. The file on disk is
// cleaned up best-effort.
func DeleteBoutiqueImage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	var imagePath string
	err = database.DB.QueryRow(
		"SELECT image_path FROM boutique_images WHERE id = ?", id).Scan(&imagePath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image non trouvée"})
		return
	}

	if _, err := database.DB.Exec("DELETE FROM boutique_images WHERE id = ?", id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if name := filepath.Base(imagePath); name != "" && name != "." {
		if err := os.Remove(filepath.Join(cfg.BoutiqueImgDir, name)); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to remove boutique image file %s: %v", name, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Image supprimée"})
}

// ReorderBoutiqueImages applies a full new ordering in one transaction.
func ReorderBoutiqueImages(c *gin.Context) {
	var req struct {
		Images []models.ImageOrder `json:"images" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format invalide"})
		return
	}

	tx, err := database.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	for _, img := range req.Images {
		if _, err := tx.Exec(
			"UPDATE boutique_images SET display_order = ? WHERE id = ?",
			img.DisplayOrder, img.ID); err != nil {
			_ = tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Ordre mis à jour"})
}
