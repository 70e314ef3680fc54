package main

import (
	"log"
	"os"

	_ "github.com/SaneeshInter/project-management-sub002/docs"
	"github.com/SaneeshInter/project-management-sub002/internal/database"
	"github.com/SaneeshInter/project-management-sub002/internal/handler"
	"github.com/SaneeshInter/project-management-sub002/internal/middleware"
	"github.com/SaneeshInter/project-management-sub002/internal/repository"
	"github.com/SaneeshInter/project-management-sub002/internal/service"
	"github.com/SaneeshInter/project-management-sub002/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Project Tracking API
// @version         1.0
// @description     Department workflow engine and project tracking API.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
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
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	if err := database.Seed(db); err != nil {
		log.Fatalf("Database seeding failed: %v", err)
	}

	middleware.InitPermissionMiddleware(db)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	approvalRepo := repository.NewApprovalRepository(db)
	qaRepo := repository.NewQARepository(db)
	deptRepo := repository.NewDepartmentRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	userService := service.NewUserService(userRepo)
	roleService := service.NewRoleService(roleRepo, txManager)
	projectService := service.NewProjectService(projectRepo, historyRepo, categoryRepo, deptRepo, auditRepo, txManager)
	workflowService := service.NewWorkflowService(projectRepo, historyRepo, approvalRepo, qaRepo, deptRepo, categoryRepo, auditRepo, txManager, wsHub)
	approvalService := service.NewApprovalService(approvalRepo, historyRepo, auditRepo, txManager)
	qaService := service.NewQAService(qaRepo, historyRepo, deptRepo, auditRepo, txManager)
	departmentService := service.NewDepartmentService(deptRepo, categoryRepo, auditRepo, txManager)
	taskService := service.NewTaskService(taskRepo, projectRepo)
	commentService := service.NewCommentService(commentRepo, projectRepo)
	auditService := service.NewAuditService(auditRepo)
	statisticsService := service.NewStatisticsService(db)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	projectHandler := handler.NewProjectHandler(projectService)
	workflowHandler := handler.NewWorkflowHandler(workflowService)
	approvalHandler := handler.NewApprovalHandler(approvalService)
	qaHandler := handler.NewQAHandler(qaService)
	departmentHandler := handler.NewDepartmentHandler(departmentService)
	taskHandler := handler.NewTaskHandler(taskService)
	commentHandler := handler.NewCommentHandler(commentService)
	auditHandler := handler.NewAuditHandler(auditService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
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

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	root := router.Group("")
	userHandler.RegisterRoutes(root)
	roleHandler.RegisterRoutes(root)
	projectHandler.RegisterRoutes(root)
	workflowHandler.RegisterRoutes(root)
	approvalHandler.RegisterRoutes(root)
	qaHandler.RegisterRoutes(root)
	departmentHandler.RegisterRoutes(root)
	taskHandler.RegisterRoutes(root)
	commentHandler.RegisterRoutes(root)
	auditHandler.RegisterRoutes(root)
	statisticsHandler.RegisterRoutes(root)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
