package main

import (
	"log"
	"net/http"

	"boutique-service/config"
	"boutique-service/consumers"
	"boutique-service/controllers"
	"boutique-service/database"
	"boutique-service/email"
	"boutique-service/middlewares"
	"boutique-service/payment"
	"boutique-service/rabbitmq"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.LoadConfig()

	if err := database.InitDB(); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer database.CloseDB()

	controllers.SetConfig(cfg)
	controllers.SetEmailService(email.NewService(
		cfg.ResendAPIKey, cfg.ResendFromEmail, cfg.ContactEmail, cfg.BaseURL))
	controllers.SetPaymentClient(payment.NewClient(cfg.StripeSecretKey))

	// The broker is optional: without it orders still go through, we
	// just lose the async pipeline.
	rmq, err := rabbitmq.NewRabbitMQ(cfg)
	if err != nil {
		log.Printf("RabbitMQ unavailable, continuing without event pipeline: %v", err)
	} else {
		defer rmq.Close()
		if err := rmq.SetupQueues(); err != nil {
			log.Printf("Failed to setup RabbitMQ queues: %v", err)
		} else {
			go consumers.StartOrderConsumer(rmq.Channel, cfg)
			controllers.SetRabbitMQ(rmq)
		}
	}

	r := gin.Default()

	r.Use(middlewares.PrometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.Static("/images/products", cfg.ProductImgDir)
	r.Static("/images/boutique", cfg.BoutiqueImgDir)
	r.Static("/attachments", cfg.AttachmentsDir)

	api := r.Group("/api")
	{
		api.GET("/products", controllers.GetProducts)
		api.GET("/products/meta/categories", controllers.GetProductCategories)
		api.GET("/products/meta/wood-types", controllers.GetProductWoodTypes)
		api.GET("/products/:id", controllers.GetProduct)

		api.GET("/shipping/calculate", controllers.CalculateShippingFromSubtotal)
		api.POST("/shipping/calculate", controllers.CalculateShippingFromCart)

		api.POST("/orders", controllers.CreateOrder)
		api.POST("/orders/create-payment-intent", controllers.CreatePaymentIntent)

		api.POST("/contact", controllers.SubmitContact)
		api.POST("/messages/webhook/inbound", controllers.InboundEmailWebhook)

		api.GET("/settings", controllers.GetSettings)
		api.GET("/settings/categories", controllers.GetCategories)
		api.GET("/settings/wood-types", controllers.GetWoodTypes)

		api.GET("/boutique/images", controllers.GetBoutiqueImages)

		api.POST("/admin/login", controllers.Login)
	}

	authorized := r.Group("/api")
	authorized.Use(middlewares.AuthMiddleware())
	{
		authorized.GET("/admin/check-session", controllers.CheckSession)
		authorized.GET("/admin/stats", controllers.GetStats)

		authorized.GET("/orders", controllers.GetOrders)
		authorized.PATCH("/orders/:id/status", controllers.UpdateOrderStatus)

		authorized.GET("/admin/products", controllers.GetAdminProducts)
		authorized.POST("/admin/products", controllers.CreateProduct)
		authorized.PUT("/admin/products/:id", controllers.UpdateProduct)
		authorized.DELETE("/admin/products/:id", controllers.DeleteProduct)
		authorized.PUT("/admin/products/:id/reorder-images", controllers.ReorderProductImages)
		authorized.DELETE("/admin/product-images/:id", controllers.DeleteProductImage)

		authorized.GET("/contact/admin", controllers.GetContacts)
		authorized.PUT("/contact/admin/:id", controllers.UpdateContactStatus)
		authorized.DELETE("/contact/admin/:id", controllers.DeleteContact)

		authorized.GET("/messages/threads", controllers.GetThreads)
		authorized.GET("/messages/threads/:id", controllers.GetThreadMessages)
		authorized.POST("/messages/threads/:id/reply", controllers.ReplyToThread)
		authorized.PUT("/messages/threads/:id/read", controllers.MarkThreadRead)
		authorized.PUT("/messages/threads/:id/status", controllers.UpdateThreadStatus)
		authorized.DELETE("/messages/threads/:id", controllers.DeleteThread)

		authorized.PUT("/settings/:key", controllers.UpdateSetting)
		authorized.POST("/settings/categories", controllers.CreateCategory)
		authorized.DELETE("/settings/categories/:id", controllers.DeleteCategory)
		authorized.POST("/settings/wood-types", controllers.CreateWoodType)
		authorized.DELETE("/settings/wood-types/:id", controllers.DeleteWoodType)

		authorized.POST("/boutique/images", controllers.AddBoutiqueImage)
		authorized.DELETE("/boutique/images/:id", controllers.DeleteBoutiqueImage)
		authorized.PUT("/boutique/images/reorder", controllers.ReorderBoutiqueImages)
	}

	addr := ":" + cfg.Port
	log.Printf("Boutique service starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
