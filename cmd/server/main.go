package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"gymflow/internal/handlers"
	appMiddleware "gymflow/internal/middleware"
	"gymflow/internal/models"
	"gymflow/internal/services"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	db, err := services.InitDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Redis is optional; stats caching and the pending-registration fast
	// path degrade gracefully without it.
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
			cache = nil
		}
	}

	// The gateway is optional too; checkout routes answer 503 without it.
	razorpayService, err := services.NewRazorpayService()
	if err != nil {
		log.Printf("Warning: %v, gateway routes disabled", err)
		razorpayService = nil
	}

	emailService := services.NewEmailService()
	paymentService := services.NewPaymentService(db, emailService)
	reportService := services.NewReportService(db, cache)
	backfillService := services.NewBackfillService(db, cache)
	cascadeService := services.NewCascadeService(db)

	// Create Echo instance
	e := echo.New()
	e.HTTPErrorHandler = appMiddleware.CustomErrorHandler

	// Middleware
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, jwtSecret)
	memberHandler := handlers.NewMemberHandler(db)
	planHandler := handlers.NewPlanHandler(db)
	userHandler := handlers.NewUserHandler(db, cascadeService)
	paymentHandler := handlers.NewPaymentHandler(db, paymentService, reportService, backfillService, razorpayService, cache)

	// Public routes
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.POST("/auth/login", authHandler.Login)
	e.GET("/payments/key", paymentHandler.GetKey)
	e.POST("/payments/create-order", paymentHandler.CreateOrder)
	e.POST("/payments/verify", paymentHandler.VerifyPayment)

	// Gym owner routes
	owner := e.Group("")
	owner.Use(appMiddleware.RequireAuth(jwtSecret))
	owner.Use(appMiddleware.RequireRole(models.RoleGymOwner, models.RoleSuperAdmin))

	owner.POST("/members", memberHandler.CreateMember)
	owner.GET("/members", memberHandler.ListMembers)
	owner.GET("/members/:id", memberHandler.GetMember)
	owner.PUT("/members/:id", memberHandler.UpdateMember)
	owner.DELETE("/members/:id", memberHandler.DeleteMember)

	owner.POST("/trainers", userHandler.CreateTrainer)
	owner.GET("/trainers", userHandler.ListTrainers)

	owner.GET("/plans", planHandler.ListPlans)
	owner.POST("/plans", planHandler.CreatePlan)
	owner.PUT("/plans/:id", planHandler.UpdatePlan)
	owner.DELETE("/plans/:id", planHandler.DeletePlan)

	owner.POST("/payments/member", paymentHandler.RecordMemberPayment)
	owner.GET("/payments", paymentHandler.ListPayments)
	owner.GET("/payments/stats", paymentHandler.GetStats)
	owner.POST("/payments/manual-receipt", paymentHandler.SendManualReceipt)

	// Admin routes
	admin := e.Group("/admin")
	admin.Use(appMiddleware.RequireAuth(jwtSecret))
	admin.Use(appMiddleware.RequireRole(models.RoleSuperAdmin))

	admin.POST("/payments/refresh", paymentHandler.RefreshPayments)
	admin.DELETE("/users/:id", userHandler.DeleteUser)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
