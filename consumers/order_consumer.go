package consumers

import (
	"encoding/json"
	"log"

	"boutique-service/config"
	"boutique-service/database"
	"boutique-service/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

func StartOrderConsumer(ch *amqp.Channel, cfg *config.Config) {
	msgs, err := ch.Consume(
		cfg.OrderQueue,
		"boutique-service", // consumer tag
		false,              // auto-ack
		false,              // exclusive
		false,              // no-local
		false,              // no-wait
		nil,
	)
	if err != nil {
		log.Printf("Failed to register order consumer: %v", err)
		return
	}

	go func() {
		for msg := range msgs {
			processOrderMessage(msg)
		}
	}()

	dlqMsgs, err := ch.Consume(
		cfg.DeadLetterQueue,
		"boutique-service-dlq", // consumer tag
		false,                  // auto-ack
		false,                  // exclusive
		false,                  // no-local
		false,                  // no-wait
		nil,
	)
	if err != nil {
		log.Printf("Failed to register DLQ consumer: %v", err)
		return
	}

	go func() {
		for msg := range dlqMsgs {
			processDeadLetterMessage(msg)
		}
	}()
}

func processOrderMessage(msg amqp.Delivery) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in message processing: %v", r)
		}
	}()

	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		log.Printf("Invalid event payload: %s", msg.Body)
		_ = msg.Nack(false, false) // reject, do not requeue
		return
	}

	log.Printf("Processing order event: ID=%d, Type=%s", event.OrderID, event.Type)

	switch event.Type {
	case "created":
		handleOrderCreated(event.OrderID)
	case "status_updated":
		handleStatusUpdated(event.OrderID)
	case "payment_check":
		handlePaymentCheck(event.OrderID)
	default:
		log.Printf("Unknown event type: %s", event.Type)
	}

	_ = msg.Ack(false)
}

func processDeadLetterMessage(msg amqp.Delivery) {
	log.Printf("Received dead letter: %s", msg.Body)
	_ = msg.Ack(false)
}

func handleOrderCreated(orderID int) {
	log.Printf("Handling order created: %d", orderID)
}

func handleStatusUpdated(orderID int) {
	var status string
	err := database.DB.QueryRow("SELECT status FROM orders WHERE id = ?", orderID).Scan(&status)
	if err != nil {
		log.Printf("Failed to get order status: %v", err)
		return
	}
	log.Printf("Handling status update for order %d: %s", orderID, status)
}

// handlePaymentCheck runs on the delayed event scheduled at checkout. An
// order still pending after the delay most likely never completed its
// Stripe confirmation, so it gets flagged for the merchant to review.
// Orders are never auto-cancelled: payment can also have succeeded with
// the confirmation webhook lost.
func handlePaymentCheck(orderID int) {
	var status, paymentID string
	err := database.DB.QueryRow(
		"SELECT status, COALESCE(payment_id, '') FROM orders WHERE id = ?", orderID,
	).Scan(&status, &paymentID)
	if err != nil {
		log.Printf("Failed to get order status: %v", err)
		return
	}

	if status == models.OrderStatusPending && paymentID == "" {
		log.Printf("Order %d still pending without payment reference, needs review", orderID)
	}
}
