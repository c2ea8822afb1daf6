package main

import (
	"os"

	"medstock/internal/database"
	"medstock/internal/handler"
	"medstock/internal/logging"
	"medstock/internal/middleware"
	"medstock/internal/repository"
	"medstock/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Medstock API
// @version         1.0
// @description     Multi-tenant medical inventory with inter-department stock transfers.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := logging.GetLogger()

	if err := godotenv.Load("configs/.env"); err != nil {
		logger.Info("no configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	logger.Info("connected to PostgreSQL")

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	deptRepo := repository.NewDepartmentRepository(db)
	productRepo := repository.NewProductRepository(db)
	transferRepo := repository.NewTransferRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	ledger := repository.NewStockRepository(db)

	userService := service.NewUserService(userRepo, orgRepo, txManager)
	departmentService := service.NewDepartmentService(deptRepo)
	productService := service.NewProductService(productRepo)
	stockService := service.NewStockService(ledger, deptRepo, productRepo, db)
	transferService := service.NewTransferService(transferRepo, ledger, historyRepo, deptRepo, productRepo, txManager)
	queryService := service.NewTransferQueryService(db)

	middleware.InitActorMiddleware(deptRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	departmentHandler := handler.NewDepartmentHandler(departmentService, stockService)
	productHandler := handler.NewProductHandler(productService)
	transferHandler := handler.NewTransferHandler(transferService, queryService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// Register API Routes
	api := router.Group("/api")
	userHandler.RegisterRoutes(api)
	departmentHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api)
	transferHandler.RegisterRoutes(api)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.WithField("port", port).Info("server listening")
	if err := router.Run(":" + port); err != nil {
		logger.WithError(err).Fatal("server failed")
	}
}
