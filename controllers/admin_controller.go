package controllers

import (
	"database/sql"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"boutique-service/database"
	"boutique-service/models"
	"boutique-service/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxProductImages = 10
	maxImageSize     = 5 << 20 // 5 MB
)

var allowedImageExts = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".gif": true, ".webp": true,
}

// Login checks admin credentials and issues a session token.
func Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiants manquants"})
		return
	}

	var (
		id         int
		username   string
		hash       string
		adminEmail string
	)
	err := database.DB.QueryRow(
		"SELECT id, username, password, COALESCE(email, '') FROM admins WHERE username = ?", req.Username,
	).Scan(&id, &username, &hash, &adminEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants incorrects"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identifiants incorrects"})
		return
	}

	token, err := utils.GenerateToken(id, username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"admin":   gin.H{"id": id, "username": username, "email": adminEmail},
	})
}

// CheckSession confirms the caller's token is still valid.
func CheckSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"username":      c.GetString("adminUsername"),
	})
}

// GetAdminProducts lists every product, out-of-stock included.
func GetAdminProducts(c *gin.Context) {
	products, err := queryProducts(productSelectColumns + " FROM products ORDER BY created_at DESC")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	c.JSON(http.StatusOK, products)
}

// CreateProduct inserts a product with its uploaded images; the first
// image becomes the primary one.
func CreateProduct(c *gin.Context) {
	var req models.ProductRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	images, err := formImages(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := database.DB.Exec(`
		INSERT INTO products (name, description, wood_type, price, category, stock, perlouze_link)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.Name, req.Description, req.WoodType, req.Price, req.Category, req.Stock, req.PerlouzeLink,
	)
	if err != nil {
		log.Printf("Product insert failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du produit"})
		return
	}
	productID, _ := result.LastInsertId()

	var primaryPath string
	for i, file := range images {
		imagePath, err := saveProductImage(c, file)
		if err != nil {
			log.Printf("Image save failed: %v", err)
			continue
		}

		isPrimary := i == 0
		if isPrimary {
			primaryPath = imagePath
		}
		if _, err := database.DB.Exec(`
			INSERT INTO product_images (product_id, image_path, display_order, is_primary)
			VALUES (?, ?, ?, ?)`,
			productID, imagePath, i+1, isPrimary,
		); err != nil {
			log.Printf("Image insert failed: %v", err)
		}
	}

	if primaryPath != "" {
		if _, err := database.DB.Exec("UPDATE products SET image_url = ? WHERE id = ?", primaryPath, productID); err != nil {
			log.Printf("Primary image update failed: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"productId":   productID,
		"imagesCount": len(images),
		"message":     "Produit créé avec succès",
	})
}

// UpdateProduct edits a product; new images append after the existing
// ones.
func UpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req models.ProductRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	images, err := formImages(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := database.DB.Exec(`
		UPDATE products
		SET name = ?, description = ?, wood_type = ?, price = ?, category = ?,
		    stock = ?, perlouze_link = ?, updated_at = NOW()
		WHERE id = ?`,
		req.Name, req.Description, req.WoodType, req.Price, req.Category,
		req.Stock, req.PerlouzeLink, id,
	)
	if err != nil {
		log.Printf("Product update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la modification du produit"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit non trouvé"})
		return
	}

	if len(images) > 0 {
		var maxOrder sql.NullInt64
		if err := database.DB.QueryRow(
			"SELECT MAX(display_order) FROM product_images WHERE product_id = ?", id).Scan(&maxOrder); err != nil {
			log.Printf("Max display order lookup failed: %v", err)
		}
		startOrder := int(maxOrder.Int64) + 1

		for i, file := range images {
			imagePath, err := saveProductImage(c, file)
			if err != nil {
				log.Printf("Image save failed: %v", err)
				continue
			}
			if _, err := database.DB.Exec(`
				INSERT INTO product_images (product_id, image_path, display_order, is_primary)
				VALUES (?, ?, ?, 0)`,
				id, imagePath, startOrder+i,
			); err != nil {
				log.Printf("Image insert failed: %v", err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "imagesAdded": len(images), "message": "Produit modifié avec succès"})
}

// DeleteProduct removes a product; its images cascade.
func DeleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	result, err := database.DB.Exec("DELETE FROM products WHERE id = ?", id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit non trouvé"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Produit supprimé avec succès"})
}

// DeleteProductImage removes one image. Deleting the primary promotes
// the first remaining image.
func DeleteProductImage(c *gin.Context) {
	imageID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image ID"})
		return
	}

	var productID int
	var wasPrimary bool
	err = database.DB.QueryRow(
		"SELECT product_id, is_primary FROM product_images WHERE id = ?", imageID,
	).Scan(&productID, &wasPrimary)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image non trouvée"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if _, err := database.DB.Exec("DELETE FROM product_images WHERE id = ?", imageID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if wasPrimary {
		var firstID int
		var firstPath string
		err := database.DB.QueryRow(`
			SELECT id, image_path FROM product_images
			WHERE product_id = ? ORDER BY display_order ASC LIMIT 1`, productID).Scan(&firstID, &firstPath)
		switch {
		case err == nil:
			if _, err := database.DB.Exec("UPDATE product_images SET is_primary = 1 WHERE id = ?", firstID); err != nil {
				log.Printf("Primary promotion failed: %v", err)
			}
			if _, err := database.DB.Exec("UPDATE products SET image_url = ? WHERE id = ?", firstPath, productID); err != nil {
				log.Printf("Primary image update failed: %v", err)
			}
		case errors.Is(err, sql.ErrNoRows):
			if _, err := database.DB.Exec("UPDATE products SET image_url = NULL WHERE id = ?", productID); err != nil {
				log.Printf("Primary image reset failed: %v", err)
			}
		default:
			log.Printf("Primary lookup failed: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Image supprimée"})
}

// ReorderProductImages applies a new ordering in one transaction.
func ReorderProductImages(c *gin.Context) {
	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req struct {
		Images []models.ImageOrder `json:"images" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides"})
		return
	}

	tx, err := database.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var primaryID int
	for _, img := range req.Images {
		if _, err := tx.Exec(
			"UPDATE product_images SET display_order = ?, is_primary = ? WHERE id = ? AND product_id = ?",
			img.DisplayOrder, img.IsPrimary, img.ID, productID,
		); err != nil {
			_ = tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if img.IsPrimary {
			primaryID = img.ID
		}
	}

	if primaryID != 0 {
		if _, err := tx.Exec(`
			UPDATE products SET image_url = (SELECT image_path FROM product_images WHERE id = ?)
			WHERE id = ?`, primaryID, productID,
		); err != nil {
			_ = tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Images réorganisées"})
}

// GetStats returns the dashboard numbers.
func GetStats(c *gin.Context) {
	stats := gin.H{}

	var totalProducts, totalOrders, outOfStock int
	var totalRevenue sql.NullFloat64

	if err := database.DB.QueryRow("SELECT COUNT(*) FROM products").Scan(&totalProducts); err != nil {
		log.Printf("Stats query failed: %v", err)
	}
	if err := database.DB.QueryRow("SELECT COUNT(*) FROM orders").Scan(&totalOrders); err != nil {
		log.Printf("Stats query failed: %v", err)
	}
	if err := database.DB.QueryRow(
		"SELECT SUM(total_amount) FROM orders WHERE status = 'confirmed'").Scan(&totalRevenue); err != nil {
		log.Printf("Stats query failed: %v", err)
	}
	if err := database.DB.QueryRow("SELECT COUNT(*) FROM products WHERE stock = 0").Scan(&outOfStock); err != nil {
		log.Printf("Stats query failed: %v", err)
	}

	stats["totalProducts"] = totalProducts
	stats["totalOrders"] = totalOrders
	stats["totalRevenue"] = totalRevenue.Float64
	stats["outOfStock"] = outOfStock

	c.JSON(http.StatusOK, stats)
}

func formImages(c *gin.Context) ([]*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		// JSON bodies have no multipart form; that is fine.
		return nil, nil
	}
	images := form.File["images"]
	if len(images) > maxProductImages {
		return nil, errors.New("Trop d'images")
	}
	for _, file := range images {
		if !allowedImageExts[strings.ToLower(filepath.Ext(file.Filename))] {
			return nil, errors.New("Seules les images sont autorisées")
		}
		if file.Size > maxImageSize {
			return nil, errors.New("Image trop volumineuse (5 Mo max)")
		}
	}
	return images, nil
}

func saveProductImage(c *gin.Context, file *multipart.FileHeader) (string, error) {
	storedName := uuid.New().String() + strings.ToLower(filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, filepath.Join(cfg.ProductImgDir, storedName)); err != nil {
		return "", err
	}
	return "/images/products/" + storedName, nil
}
