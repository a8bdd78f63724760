package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/abhikanjia/waste-management-api/config"
	"github.com/abhikanjia/waste-management-api/database"
	"github.com/abhikanjia/waste-management-api/handlers"
	"github.com/abhikanjia/waste-management-api/rabbitmq"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Database connection
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	// Initialize database schema
	log.Println("Initializing database schema...")
	if err := database.InitializeSchema(db); err != nil {
		log.Fatal("Failed to initialize database schema:", err)
	}

	// Initialize service
	service := database.NewComplaintService(db)

	// Event fan-out is optional; the API works without a broker.
	var events *rabbitmq.Publisher
	if cfg.AMQPURL != "" {
		events, err = rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			log.Printf("WARNING: RabbitMQ unavailable, lifecycle events disabled: %v", err)
		} else {
			defer events.Close()
		}
	}

	// Setup Gin router
	router := setupRouter(service, events, cfg)

	// Start server
	log.Printf("Complaint service starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func setupRouter(service *database.ComplaintService, events *rabbitmq.Publisher, cfg *config.Config) *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies(cfg.TrustedProxies)

	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowOrigins:     []string{"*"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	h := handlers.NewHandlers(service, events)

	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		complaints := api.Group("/complaints")
		{
			complaints.GET("", h.GetComplaints)
			complaints.GET("/user/:userId", h.GetUserComplaints)
			complaints.GET("/map", h.GetComplaintMap)
			complaints.GET("/:complaintId", h.GetComplaint)
			complaints.GET("/:complaintId/history", h.GetComplaintHistory)
			complaints.POST("", h.CreateComplaint)
			complaints.PATCH("/:complaintId/status", h.UpdateComplaintStatus)
		}

		users := api.Group("/users")
		{
			users.GET("/:userId", h.GetUser)
			users.GET("/:userId/stats", h.GetUserStats)
			users.POST("", h.CreateOrUpdateUser)
		}

		api.GET("/categories", h.GetCategories)

		notifications := api.Group("/notifications")
		{
			notifications.GET("/user/:userId", h.GetUserNotifications)
			notifications.GET("/user/:userId/unread", h.GetUnreadNotifications)
			notifications.POST("", h.CreateNotification)
			notifications.PATCH("/:notificationId/read", h.MarkNotificationRead)
			notifications.PATCH("/user/:userId/read-all", h.MarkAllNotificationsRead)
		}
	}

	return router
}
