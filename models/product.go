package models

import (
	"time"
)

type Product struct {
	ID           int            `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	WoodType     string         `json:"wood_type"`
	Price        float64        `json:"price"`
	Category     string         `json:"category"`
	Stock        int            `json:"stock"`
	ImageURL     string         `json:"image_url,omitempty"`
	PerlouzeLink string         `json:"perlouze_link,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Images       []ProductImage `json:"images"`
	ImagePaths   []string       `json:"image_paths"`
}

type ProductImage struct {
	ID           int    `json:"id"`
	ProductID    int    `json:"product_id"`
	ImagePath    string `json:"image_path"`
	DisplayOrder int    `json:"display_order"`
	IsPrimary    bool   `json:"is_primary"`
}

type ProductRequest struct {
	Name         string  `json:"name" form:"name" binding:"required"`
	Description  string  `json:"description" form:"description"`
	WoodType     string  `json:"wood_type" form:"wood_type"`
	Price        float64 `json:"price" form:"price" binding:"required,gte=0"`
	Category     string  `json:"category" form:"category" binding:"required"`
	Stock        int     `json:"stock" form:"stock" binding:"gte=0"`
	PerlouzeLink string  `json:"perlouze_link" form:"perlouze_link"`
}

// ImageOrder carries one entry of an image reorder request.
type ImageOrder struct {
	ID           int  `json:"id" binding:"required"`
	DisplayOrder int  `json:"display_order"`
	IsPrimary    bool `json:"is_primary"`
}

type Category struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type WoodType struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
