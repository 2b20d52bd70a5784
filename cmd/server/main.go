package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"
	"github.com/lumenworks/sitecms/internal/cache"
	"github.com/lumenworks/sitecms/internal/config"
	"github.com/lumenworks/sitecms/internal/database"
	"github.com/lumenworks/sitecms/internal/document"
	"github.com/lumenworks/sitecms/internal/handlers"
	"github.com/lumenworks/sitecms/internal/middleware"
	"github.com/lumenworks/sitecms/internal/reorder"
	"github.com/lumenworks/sitecms/internal/storage"
	"github.com/lumenworks/sitecms/internal/types"
	"gorm.io/gorm"

	_ "github.com/lumenworks/sitecms/docs/api" // Swagger docs
)

// @title SiteCMS API
// @version 1.0.0
// @description Content service for the corporate site: posts, sections, ordering, categories, media
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/lumenworks/sitecms

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name auth_token

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed display order for types that never had one
	if err := database.EnsureDisplayOrder(db); err != nil {
		log.Fatalf("Failed to ensure display order: %v", err)
	}

	// Media storage backend
	store, err := buildStorage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Optional Redis listing cache
	listCache := buildCache(cfg)

	// Debounced reorder registry
	registry := reorder.NewRegistry(
		time.Duration(cfg.ReorderDebounceMS)*time.Millisecond,
		func(ctx context.Context, postType string, ids []int64) error {
			return reorder.ReorderPosts(db.WithContext(ctx), ids, postType)
		},
	)
	defer registry.StopAll()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(cors.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("sitecms")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	registerRoutes(app, cfg, db, store, listCache, registry)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// registerRoutes wires every API route. Reads are public; writes
// require the admin token.
func registerRoutes(app *fiber.App, cfg *config.Config, db *gorm.DB, store storage.Store, listCache cache.Cache, registry *reorder.Registry) {
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	admin := middleware.AuthAdmin(cfg.JWTSecret)

	healthHandler := &handlers.HealthHandler{Cfg: cfg, DB: db, Cache: listCache}
	app.Get("/health", healthHandler.Health)

	authHandler := &handlers.AuthHandler{Cfg: cfg}
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/me", admin, authHandler.Me)

	postsHandler := &handlers.PostsHandler{DB: db, Cache: listCache}
	posts := api.Group("/posts")
	posts.Get("/", postsHandler.ListPosts)

	reorderHandler := &handlers.ReorderHandler{DB: db, Registry: registry, Cache: listCache}
	posts.Get("/:type/order", reorderHandler.GetOrder)
	posts.Put("/:type/order", admin, reorderHandler.SetOrder)
	posts.Post("/:type/order/flush", admin, reorderHandler.FlushOrder)

	posts.Get("/:id", postsHandler.GetPost)
	posts.Post("/", admin, postsHandler.SavePost)
	posts.Delete("/:id", admin, postsHandler.DeletePost)

	editorHandler := &handlers.EditorHandler{DB: db, Sessions: document.NewManager(), Cache: listCache}
	editor := api.Group("/editor", admin)
	editor.Post("/:session/open", editorHandler.Open)
	editor.Get("/:session", editorHandler.Get)
	editor.Patch("/:session/fields", editorHandler.UpdateFields)
	editor.Post("/:session/sections", editorHandler.AddSection)
	editor.Patch("/:session/sections/:sectionId", editorHandler.UpdateSection)
	editor.Delete("/:session/sections/:sectionId", editorHandler.RemoveSection)
	editor.Post("/:session/sections/:sectionId/move", editorHandler.MoveSection)
	editor.Post("/:session/publish", editorHandler.Publish)
	editor.Delete("/:session", editorHandler.Discard)

	categoriesHandler := &handlers.CategoriesHandler{DB: db}
	categories := api.Group("/categories")
	categories.Get("/", categoriesHandler.ListCategories)
	categories.Post("/", admin, categoriesHandler.CreateCategory)
	categories.Put("/:id", admin, categoriesHandler.UpdateCategory)
	categories.Delete("/:id", admin, categoriesHandler.DeleteCategory)

	uploadHandler := &handlers.UploadHandler{Store: store}
	api.Post("/upload", admin, uploadHandler.Upload)
	api.Delete("/upload", admin, uploadHandler.Delete)

	// Disk uploads are served directly
	if cfg.StorageBackend == "disk" {
		app.Static("/uploads", cfg.UploadDir)
	}
}

func buildStorage(cfg *config.Config) (storage.Store, error) {
	if cfg.StorageBackend == "gcs" {
		return storage.NewGCS(context.Background(), cfg.GCSBucket)
	}
	return storage.NewDisk(cfg.UploadDir, cfg.PublicBaseURL), nil
}

func buildCache(cfg *config.Config) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.Noop{}
	}
	redisCache, err := cache.NewRedis(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Printf("Redis unavailable, listing cache disabled: %v", err)
		return cache.Noop{}
	}
	log.Printf("Listing cache enabled at %s", cfg.RedisAddr)
	return redisCache
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Check for authorization errors raised by middleware
	if e, ok := err.(*types.CustomError); ok {
		code = e.Code
		message = e.Message
		errorType = e.Type
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
