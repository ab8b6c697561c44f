package models

import (
	"time"
)

// BoutiqueImage is one entry of the storefront gallery, ordered by
// display_order.
type BoutiqueImage struct {
	ID           int       `json:"id"`
	ImagePath    string    `json:"image_path"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}
