package controllers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"boutique-service/database"
	"boutique-service/email"
	"boutique-service/middlewares"
	"boutique-service/models"
	"boutique-service/payment"

	"github.com/gin-gonic/gin"
)

// CreatePaymentIntent starts a Stripe payment for the cart total.
func CreatePaymentIntent(c *gin.Context) {
	var req struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if paymentClient == nil || !paymentClient.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Paiement non configuré"})
		return
	}

	clientSecret, err := paymentClient.CreateIntent(c.Request.Context(), req.Amount)
	if err != nil {
		if errors.Is(err, payment.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Paiement non configuré"})
			return
		}
		log.Printf("Payment intent creation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création du paiement"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"clientSecret": clientSecret})
}

// CreateOrder persists a checkout: the order row and every stock
// decrement commit in one transaction, then notifications and events fire
// best-effort.
func CreateOrder(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("create", status)
	}()

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création de la commande"})
		return
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "card"
	}

	tx, err := database.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not start transaction"})
		return
	}

	result, err := tx.Exec(`
		INSERT INTO orders (customer_name, customer_email, customer_phone, customer_address,
		                    items, subtotal, shipping_cost, total_amount, payment_method, payment_id, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.CustomerName, req.CustomerEmail, req.CustomerPhone, req.CustomerAddress,
		string(itemsJSON), req.Subtotal, req.ShippingCost, req.TotalAmount,
		paymentMethod, req.PaymentID, models.OrderStatusPending,
	)
	if err != nil {
		_ = tx.Rollback()
		log.Printf("Order insert failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création de la commande"})
		return
	}

	orderID, err := result.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création de la commande"})
		return
	}

	// Stock decrements ride the same transaction: either the order and
	// every decrement land, or none do. Stock can still go negative when
	// two orders race; oversell is accepted behavior for a one-man shop.
	for _, item := range req.Items {
		if _, err := tx.Exec("UPDATE products SET stock = stock - ? WHERE id = ?", item.Quantity, item.ID); err != nil {
			_ = tx.Rollback()
			log.Printf("Stock decrement failed for product %d: %v", item.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lors de la création de la commande"})
			return
		}
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction commit failed"})
		return
	}

	order := &models.Order{
		ID:              int(orderID),
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Items:           req.Items,
		Subtotal:        req.Subtotal,
		ShippingCost:    req.ShippingCost,
		TotalAmount:     req.TotalAmount,
		Status:          models.OrderStatusPending,
		PaymentMethod:   paymentMethod,
		PaymentID:       req.PaymentID,
		CreatedAt:       time.Now(),
	}

	if emailService != nil {
		ctx, cancel := email.Background()
		emailService.SendOrderNotification(ctx, order)
		middlewares.RecordEmailSend("merchant_new_order")
		emailService.SendCustomerOrderEmail(ctx, order, models.OrderStatusPending)
		middlewares.RecordEmailSend("customer_order_status")
		cancel()
	}

	if rabbitMQ != nil {
		priority := 5
		if order.TotalAmount > 1000 {
			priority = 9
		}

		event := models.OrderEvent{OrderID: order.ID, Type: "created", Status: order.Status, Total: order.TotalAmount}
		if err := rabbitMQ.PublishOrderEvent(event, priority); err != nil {
			log.Printf("Failed to publish order created event: %v", err)
		}

		check := models.OrderEvent{OrderID: order.ID, Type: "payment_check", Status: order.Status, Total: order.TotalAmount}
		if err := rabbitMQ.PublishDelayedEvent(check, 15*time.Minute); err != nil {
			log.Printf("Failed to publish delayed payment check event: %v", err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "orderId": orderID})
}

// GetOrders lists every order for the admin, items deserialized from the
// stored snapshot.
func GetOrders(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("list", status)
	}()

	rows, err := database.DB.Query(orderSelectColumns + " FROM orders ORDER BY created_at DESC")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer func() { _ = rows.Close() }()

	orders := make([]models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			log.Printf("Error scanning order row: %v", err)
			continue
		}
		orders = append(orders, *order)
	}

	c.JSON(http.StatusOK, orders)
}

// UpdateOrderStatus sets any of the four statuses unconditionally and
// fires the matching customer email. Repeating a status re-sends the
// same email; nothing deduplicates.
func UpdateOrderStatus(c *gin.Context) {
	defer func() {
		status := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("update_status", status)
	}()

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required,oneof=pending confirmed shipped delivered"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := database.DB.Exec("UPDATE orders SET status = ? WHERE id = ?", req.Status, orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande non trouvée"})
		return
	}

	if emailService != nil {
		if order, err := fetchOrder(orderID); err != nil {
			log.Printf("Could not load order %d for status email: %v", orderID, err)
		} else {
			ctx, cancel := email.Background()
			emailService.SendCustomerOrderEmail(ctx, order, req.Status)
			middlewares.RecordEmailSend("customer_order_status")
			cancel()
		}
	}

	if rabbitMQ != nil {
		event := models.OrderEvent{OrderID: orderID, Type: "status_updated", Status: req.Status}
		if err := rabbitMQ.PublishOrderEvent(event, 5); err != nil {
			log.Printf("Failed to publish order status event: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Statut mis à jour"})
}

const orderSelectColumns = `SELECT id, customer_name, customer_email,
	COALESCE(customer_phone, ''), COALESCE(customer_address, ''), items,
	subtotal, shipping_cost, total_amount, status,
	COALESCE(payment_method, ''), COALESCE(payment_id, ''), created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	var itemsJSON string
	if err := row.Scan(
		&order.ID, &order.CustomerName, &order.CustomerEmail,
		&order.CustomerPhone, &order.CustomerAddress, &itemsJSON,
		&order.Subtotal, &order.ShippingCost, &order.TotalAmount, &order.Status,
		&order.PaymentMethod, &order.PaymentID, &order.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(itemsJSON), &order.Items); err != nil {
		log.Printf("Corrupt items snapshot on order %d: %v", order.ID, err)
		order.Items = []models.OrderItem{}
	}
	return &order, nil
}

func fetchOrder(orderID int) (*models.Order, error) {
	row := database.DB.QueryRow(orderSelectColumns+" FROM orders WHERE id = ?", orderID)
	return scanOrder(row)
}
