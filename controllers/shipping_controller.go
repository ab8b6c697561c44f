package controllers

import (
	"net/http"
	"strconv"

	"boutique-service/shipping"

	"github.com/gin-gonic/gin"
)

// CalculateShippingFromSubtotal quotes shipping for
// GET /api/shipping/calculate?subtotal=.
func CalculateShippingFromSubtotal(c *gin.Context) {
	subtotal, err := strconv.ParseFloat(c.DefaultQuery("subtotal", "0"), 64)
	if err != nil || subtotal < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Montant invalide"})
		return
	}

	c.JSON(http.StatusOK, shipping.Calculate(subtotal))
}

// CalculateShippingFromCart quotes shipping for a posted cart.
func CalculateShippingFromCart(c *gin.Context) {
	var req struct {
		Items []shipping.CartItem `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format de panier invalide"})
		return
	}
	if req.Items == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Format de panier invalide"})
		return
	}

	c.JSON(http.StatusOK, shipping.CalculateFromCart(req.Items))
}
