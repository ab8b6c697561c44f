// Package shipping computes delivery costs for the boutique. Wood pieces
// are bulky, so a flat rate applies below the free-shipping threshold.
package shipping

import (
	"fmt"
	"math"
)

const (
	// FreeThreshold is the subtotal at or above which shipping is free.
	FreeThreshold = 50.00
	// StandardCost is the flat rate below the threshold.
	StandardCost = 6.90
)

type Quote struct {
	ShippingCost          float64 `json:"shippingCost"`
	FreeShippingThreshold float64 `json:"freeShippingThreshold"`
	Message               string  `json:"message"`
	Subtotal              float64 `json:"subtotal"`
	Total                 float64 `json:"total"`
}

// CartItem mirrors the cart line shape sent by the storefront. Price may
// live either on the line itself or on the nested product.
type CartItem struct {
	Product  *CartProduct `json:"product,omitempty"`
	Price    float64      `json:"price"`
	Quantity int          `json:"quantity"`
}

type CartProduct struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Calculate quotes shipping for a subtotal. Negative subtotals are not
// validated here; callers reject them before quoting.
func Calculate(subtotal float64) Quote {
	shippingCost := 0.0
	message := "🎉 Livraison offerte !"

	if subtotal < FreeThreshold {
		shippingCost = StandardCost
		remaining := FreeThreshold - subtotal
		message = fmt.Sprintf("Plus que %.2f € pour la livraison offerte !", remaining)
	}

	return Quote{
		ShippingCost:          round2(shippingCost),
		FreeShippingThreshold: FreeThreshold,
		Message:               message,
		Subtotal:              round2(subtotal),
		Total:                 round2(subtotal + shippingCost),
	}
}

// CalculateFromCart sums price × quantity over the cart and quotes the
// result. A missing quantity counts as 1, a missing price as 0.
func CalculateFromCart(items []CartItem) Quote {
	if len(items) == 0 {
		return Quote{
			ShippingCost:          0,
			FreeShippingThreshold: FreeThreshold,
			Message:               "Votre panier est vide",
			Subtotal:              0,
			Total:                 0,
		}
	}

	subtotal := 0.0
	for _, item := range items {
		price := item.Price
		if item.Product != nil && item.Product.Price != 0 {
			price = item.Product.Price
		}
		quantity := item.Quantity
		if quantity == 0 {
			quantity = 1
		}
		subtotal += price * float64(quantity)
	}

	return Calculate(subtotal)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
