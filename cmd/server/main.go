package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/mtsuzuki/todo-collab-api/internal/config"
	"github.com/mtsuzuki/todo-collab-api/internal/constants"
	"github.com/mtsuzuki/todo-collab-api/internal/database"
	"github.com/mtsuzuki/todo-collab-api/internal/handlers"
	"github.com/mtsuzuki/todo-collab-api/internal/middleware"
	"github.com/mtsuzuki/todo-collab-api/internal/realtime"
	"github.com/mtsuzuki/todo-collab-api/internal/repository"
	"github.com/mtsuzuki/todo-collab-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// Attachment blob storage
	blobs, err := services.NewBlobStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to prepare upload directory: %v", err)
	}

	// Realtime hub
	hub := realtime.NewHub()
	go hub.Run()

	// Repositories
	db := database.GetDB()
	todoRepo := repository.NewTodoRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	shareRepo := repository.NewShareRepository(db)
	userRepo := repository.NewUserRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	// Services
	authorizer := services.NewAuthorizer(shareRepo)
	authService := services.NewAuthService(userRepo)
	todoService := services.NewTodoService(todoRepo, categoryRepo, attachmentRepo, authorizer, blobs, hub)
	categoryService := services.NewCategoryService(categoryRepo)
	shareService := services.NewShareService(todoRepo, shareRepo, userRepo, authorizer)
	attachmentService := services.NewAttachmentService(attachmentRepo, todoRepo, authorizer, blobs)
	transferService := services.NewTransferService(todoRepo, categoryRepo)

	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionName, store))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	todoHandler := handlers.NewTodoHandler(todoService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	shareHandler := handlers.NewShareHandler(shareService)
	attachmentHandler := handlers.NewAttachmentHandler(attachmentService)
	transferHandler := handlers.NewTransferHandler(transferService, authService)
	aiHandler := handlers.NewAIHandler(aiService)
	wsHandler := handlers.NewWSHandler(hub, todoService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Todo Collab API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Todo routes (protected)
		todos := api.Group("/todos")
		todos.Use(middleware.RequireAuth())
		{
			todos.GET("", todoHandler.ListTodos)
			todos.POST("", todoHandler.CreateTodo)
			todos.GET("/search", todoHandler.SearchTodos)
			todos.GET("/stats", todoHandler.Stats)
			todos.POST("/suggest", aiHandler.SuggestTodos)
			todos.GET("/:id", middleware.RequireTodoView(), todoHandler.GetTodo)
			todos.PATCH("/:id", middleware.RequireTodoView(), todoHandler.UpdateTodo)
			todos.DELETE("/:id", middleware.RequireTodoView(), todoHandler.DeleteTodo)
			todos.POST("/:id/toggle", middleware.RequireTodoView(), todoHandler.ToggleStatus)
			todos.POST("/:id/share", middleware.RequireTodoView(), shareHandler.ShareTodo)
			todos.DELETE("/:id/share", middleware.RequireTodoView(), shareHandler.UnshareTodo)
			todos.GET("/:id/shares", middleware.RequireTodoView(), shareHandler.ListShares)
			todos.POST("/:id/attachments", middleware.RequireTodoView(), attachmentHandler.UploadAttachment)
			todos.GET("/:id/attachments", middleware.RequireTodoView(), attachmentHandler.ListAttachments)
			todos.DELETE("/:id/attachments/:attachment_id", middleware.RequireTodoView(), attachmentHandler.DeleteAttachment)
		}

		// Category routes (protected)
		categories := api.Group("/categories")
		categories.Use(middleware.RequireAuth())
		{
			categories.GET("", categoryHandler.ListCategories)
			categories.POST("", categoryHandler.CreateCategory)
			categories.GET("/:id", categoryHandler.GetCategory)
			categories.PUT("/:id", categoryHandler.UpdateCategory)
			categories.DELETE("/:id", categoryHandler.DeleteCategory)
		}

		// Import/export routes (protected)
		api.GET("/export", middleware.RequireAuth(), transferHandler.Export)
		api.POST("/import", middleware.RequireAuth(), transferHandler.Import)
	}

	// Websocket routes (protected, upgraded after session auth)
	ws := r.Group("/ws")
	ws.Use(middleware.RequireAuth())
	{
		ws.GET("/todos", wsHandler.TodoSocket)
		ws.GET("/notifications", wsHandler.NotificationSocket)
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
