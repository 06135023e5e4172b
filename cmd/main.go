package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"

	"garagehub/internal/caching"
	"garagehub/internal/handlers"
	"garagehub/internal/jobs/background"
	"garagehub/internal/middleware"
	"garagehub/internal/models"
	"garagehub/internal/repositories"
	"garagehub/internal/services"
	"garagehub/pkg/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment")
	}

	log.SetFormatter(&log.JSONFormatter{})

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer pool.Close()

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisDB := 0
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if db, err := strconv.Atoi(raw); err == nil {
			redisDB = db
		}
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	})
	cacheSvc := caching.NewCacheService(redisClient)

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	minioSvc, err := services.NewMinioService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize object storage")
	}

	db := repositories.NewDB(pool)

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	vehicleRepo := repositories.NewVehicleRepo(pool)
	bookingRepo := repositories.NewBookingRepo(pool)
	partRepo := repositories.NewPartRepo(pool)
	jobcardRepo := repositories.NewJobCardRepo(pool)
	invoiceRepo := repositories.NewInvoiceRepo(pool)

	// Services
	authSvc := services.NewAuthService(userRepo, jwtSecret)
	vehicleSvc := services.NewVehicleService(vehicleRepo)
	bookingSvc := services.NewBookingService(db, bookingRepo, vehicleRepo, userRepo)
	partSvc := services.NewPartService(partRepo, cacheSvc)
	billingSvc := services.NewBillingService(db, invoiceRepo, jobcardRepo, bookingRepo)
	jobcardSvc := services.NewJobCardService(db, jobcardRepo, partRepo, vehicleRepo, bookingRepo, userRepo, billingSvc, cacheSvc)
	documentSvc := services.NewInvoiceDocumentService(minioSvc)

	// Handlers
	authHandler := handlers.NewAuthHandler(authSvc)
	vehicleHandler := handlers.NewVehicleHandler(vehicleSvc)
	bookingHandler := handlers.NewBookingHandler(bookingSvc)
	partHandler := handlers.NewPartHandler(partSvc)
	jobcardHandler := handlers.NewJobCardHandler(jobcardSvc)
	invoiceHandler := handlers.NewInvoiceHandler(billingSvc, jobcardSvc, documentSvc)
	userHandler := handlers.NewUserHandler(userRepo)
	healthHandler := handlers.NewHealthHandler(pool)

	// Background jobs
	scheduler, err := background.NewScheduler(partSvc, billingSvc)
	if err != nil {
		log.WithError(err).Fatal("failed to create scheduler")
	}
	if err := scheduler.Start(); err != nil {
		log.WithError(err).Fatal("failed to start scheduler")
	}
	defer scheduler.Stop()

	e := echo.New()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	e.GET("/health", healthHandler.Check)
	e.GET("/health/ready", healthHandler.Ready)

	v1 := e.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)

	protected := v1.Group("")
	protected.Use(middleware.JWT(jwtSecret))
	protected.Use(middleware.ExtractPrincipal())

	adminOnly := middleware.RequireRole(models.RoleAdmin)
	staff := middleware.RequireRole(models.RoleAdmin, models.RoleMechanic)

	// Users
	protected.GET("/users", userHandler.ListByRole, adminOnly)

	// Vehicles
	protected.POST("/vehicles", vehicleHandler.Create)
	protected.GET("/vehicles", vehicleHandler.List)
	protected.GET("/vehicles/:id", vehicleHandler.Get)
	protected.PUT("/vehicles/:id", vehicleHandler.Update, adminOnly)
	protected.DELETE("/vehicles/:id", vehicleHandler.Delete, adminOnly)

	// Bookings
	protected.POST("/bookings", bookingHandler.Create)
	protected.GET("/bookings", bookingHandler.List)
	protected.GET("/bookings/:id", bookingHandler.Get)
	protected.PATCH("/bookings/:id/status", bookingHandler.UpdateStatus, staff)
	protected.DELETE("/bookings/:id", bookingHandler.Delete, adminOnly)

	// Parts
	protected.GET("/parts", partHandler.List)
	protected.GET("/parts/search", partHandler.Search)
	protected.GET("/parts/low-stock", partHandler.LowStock, staff)
	protected.GET("/parts/:id", partHandler.Get)
	protected.POST("/parts", partHandler.Create, adminOnly)
	protected.PUT("/parts/:id", partHandler.Update, adminOnly)
	protected.DELETE("/parts/:id", partHandler.Delete, adminOnly)

	// Job cards
	protected.POST("/jobcards", jobcardHandler.Create, staff)
	protected.GET("/jobcards", jobcardHandler.List, staff)
	protected.GET("/jobcards/:id", jobcardHandler.Get)
	protected.POST("/jobcards/:id/tasks", jobcardHandler.AddTask, staff)
	protected.POST("/jobcards/:id/parts", jobcardHandler.AddSparePart, staff)
	protected.PATCH("/jobcards/:id/assign", jobcardHandler.AssignMechanic, adminOnly)
	protected.PATCH("/jobcards/:id/status", jobcardHandler.UpdateStatus, staff)
	protected.PATCH("/jobcards/:id/progress", jobcardHandler.UpdateProgress, staff)
	protected.DELETE("/jobcards/:id", jobcardHandler.Delete, adminOnly)
	protected.GET("/jobcards/:id/invoices", invoiceHandler.ListByJobCard)

	// Invoices
	protected.GET("/invoices", invoiceHandler.List, staff)
	protected.GET("/invoices/:id", invoiceHandler.Get)
	protected.GET("/invoices/:id/download", invoiceHandler.Download)
	protected.PATCH("/invoices/:id/status", invoiceHandler.UpdateStatus, staff)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := e.Start(":" + port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
