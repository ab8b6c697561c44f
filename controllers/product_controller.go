package controllers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"

	"boutique-service/database"
	"boutique-service/models"

	"github.com/gin-gonic/gin"
)

const productSelectColumns = `SELECT id, name, COALESCE(description, ''),
	COALESCE(wood_type, ''), price, category, stock,
	COALESCE(image_url, ''), COALESCE(perlouze_link, ''), created_at, updated_at`

// GetProducts lists in-stock products for the public catalog, optionally
// filtered by category and a free-text search.
func GetProducts(c *gin.Context) {
	query := productSelectColumns + " FROM products WHERE stock > 0"
	params := []any{}

	if category := c.Query("category"); category != "" && category != "all" {
		query += " AND category = ?"
		params = append(params, category)
	}

	if search := c.Query("search"); search != "" {
		query += " AND (name LIKE ? OR description LIKE ? OR wood_type LIKE ?)"
		term := "%" + search + "%"
		params = append(params, term, term, term)
	}

	query += " ORDER BY created_at DESC"

	products, err := queryProducts(query, params...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, products)
}

// GetProduct returns one product with its ordered images.
func GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	row := database.DB.QueryRow(productSelectColumns+" FROM products WHERE id = ?", id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit non trouvé"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	attachProductImages(product)
	c.JSON(http.StatusOK, product)
}

// GetProductCategories returns the distinct categories in use.
func GetProductCategories(c *gin.Context) {
	listDistinctColumn(c, "SELECT DISTINCT category FROM products ORDER BY category")
}

// GetProductWoodTypes returns the distinct wood types in use.
func GetProductWoodTypes(c *gin.Context) {
	listDistinctColumn(c, "SELECT DISTINCT wood_type FROM products WHERE wood_type IS NOT NULL AND wood_type != '' ORDER BY wood_type")
}

func listDistinctColumn(c *gin.Context, query string) {
	rows, err := database.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer func() { _ = rows.Close() }()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			log.Printf("Error scanning row: %v", err)
			continue
		}
		values = append(values, v)
	}

	c.JSON(http.StatusOK, values)
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var p models.Product
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.WoodType, &p.Price, &p.Category,
		&p.Stock, &p.ImageURL, &p.PerlouzeLink, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Images = []models.ProductImage{}
	p.ImagePaths = []string{}
	return &p, nil
}

func queryProducts(query string, params ...any) ([]models.Product, error) {
	rows, err := database.DB.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			log.Printf("Error scanning product row: %v", err)
			continue
		}
		products = append(products, *p)
	}

	// Image enrichment failures leave the product list usable.
	for i := range products {
		attachProductImages(&products[i])
	}

	return products, nil
}

func attachProductImages(p *models.Product) {
	rows, err := database.DB.Query(`
		SELECT id, product_id, image_path, display_order, is_primary
		FROM product_images
		WHERE product_id = ?
		ORDER BY display_order ASC`, p.ID)
	if err != nil {
		log.Printf("Image enrichment failed for product %d: %v", p.ID, err)
		return
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var img models.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ImagePath, &img.DisplayOrder, &img.IsPrimary); err != nil {
			log.Printf("Error scanning product image: %v", err)
			continue
		}
		p.Images = append(p.Images, img)
		p.ImagePaths = append(p.ImagePaths, img.ImagePath)
	}
}
