package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"boutique-service/database"
	"boutique-service/models"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
)

// GetSettings returns every site setting as a key/value object.
func GetSettings(c *gin.Context) {
	rows, err := database.DB.Query("SELECT `key`, COALESCE(value, '') FROM settings")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer func() { _ = rows.Close() }()

	settings := map[string]string{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			log.Printf("Error scanning setting row: %v", err)
			continue
		}
		settings[key] = value
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSetting upserts one setting.
func UpdateSetting(c *gin.Context) {
	key := c.Param("key")

	var req struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := database.DB.Exec(
		"INSERT INTO settings (`key`, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = ?",
		key, req.Value, req.Value,
	); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Paramètre mis à jour"})
}

// Categories and wood types are the two reference lists products
// classify against. Same endpoints, same delete guard.

func GetCategories(c *gin.Context) {
	rows, err := database.DB.Query("SELECT id, name, created_at FROM categories ORDER BY name ASC")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer func() { _ = rows.Close() }()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedAt); err != nil {
			log.Printf("Error scanning category row: %v", err)
			continue
		}
		categories = append(categories, cat)
	}

	c.JSON(http.StatusOK, categories)
}

func CreateCategory(c *gin.Context) {
	createReferenceRow(c, "categories", "Cette catégorie existe déjà", "Catégorie ajoutée")
}

// DeleteCategory refuses while any product still uses the category,
// reporting how many block the delete.
func DeleteCategory(c *gin.Context) {
	deleteReferenceRow(c, "categories", "category",
		"%d produit(s) utilisent cette catégorie", "Catégorie supprimée", "Catégorie non trouvée")
}

func GetWoodTypes(c *gin.Context) {
	rows, err := database.DB.Query("SELECT id, name, created_at FROM wood_types ORDER BY name ASC")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer func() { _ = rows.Close() }()

	woodTypes := make([]models.WoodType, 0)
	for rows.Next() {
		var wt models.WoodType
		if err := rows.Scan(&wt.ID, &wt.Name, &wt.CreatedAt); err != nil {
			log.Printf("Error scanning wood type row: %v", err)
			continue
		}
		woodTypes = append(woodTypes, wt)
	}

	c.JSON(http.StatusOK, woodTypes)
}

func CreateWoodType(c *gin.Context) {
	createReferenceRow(c, "wood_types", "Ce type de bois existe déjà", "Type de bois ajouté")
}

func DeleteWoodType(c *gin.Context) {
	deleteReferenceRow(c, "wood_types", "wood_type",
		"%d produit(s) utilisent ce type de bois", "Type de bois supprimé", "Type de bois non trouvé")
}

func createReferenceRow(c *gin.Context, table, duplicateMsg, successMsg string) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nom requis"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nom requis"})
		return
	}

	result, err := database.DB.Exec("INSERT INTO "+table+" (name) VALUES (?)", name)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			c.JSON(http.StatusBadRequest, gin.H{"error": duplicateMsg})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	id, _ := result.LastInsertId()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": successMsg,
		"id":      id,
		"name":    name,
	})
}

func deleteReferenceRow(c *gin.Context, table, productColumn, blockedFmt, successMsg, notFoundMsg string) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return
	}

	var count int
	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM products WHERE %s = (SELECT name FROM %s WHERE id = ?)",
		productColumn, table,
	)
	if err := database.DB.QueryRow(query, id).Scan(&count); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Impossible de supprimer : " + fmt.Sprintf(blockedFmt, count),
		})
		return
	}

	result, err := database.DB.Exec("DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": successMsg})
}
