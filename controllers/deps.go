package controllers

import (
	"boutique-service/config"
	"boutique-service/email"
	"boutique-service/payment"
	"boutique-service/rabbitmq"
)

var (
	cfg           *config.Config
	rabbitMQ      *rabbitmq.RabbitMQ
	emailService  *email.Service
	paymentClient *payment.Client
)

func SetConfig(c *config.Config) {
	cfg = c
}

// SetRabbitMQ wires the optional event bus. A nil bus means events are
// skipped.
func SetRabbitMQ(rmq *rabbitmq.RabbitMQ) {
	rabbitMQ = rmq
}

func SetEmailService(svc *email.Service) {
	emailService = svc
}

func SetPaymentClient(client *payment.Client) {
	paymentClient = client
}
