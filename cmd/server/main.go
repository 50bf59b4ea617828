package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/docuforms/docuforms-api/internal/config"
	"github.com/docuforms/docuforms-api/internal/database"
	"github.com/docuforms/docuforms-api/internal/handlers"
	"github.com/docuforms/docuforms-api/internal/middleware"
	"github.com/docuforms/docuforms-api/internal/services"
	"github.com/docuforms/docuforms-api/internal/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/joho/godotenv"

	_ "github.com/docuforms/docuforms-api/docs/api" // Swagger docs
)

// @title DocuForms API
// @version 1.0.0
// @description Hierarchical document tree with versioned documents and form submissions

// @contact.name API Support
// @contact.url https://github.com/docuforms/docuforms-api

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load a .env file when present; the environment wins on conflicts
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

	// Token verifier, shared by all requests
	keycloak := services.NewKeycloakService(cfg)
	if cfg.DevAuthBypass {
		log.Println("WARNING: development auth bypass is enabled")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("docuforms")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Unauthenticated liveness surface
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "DocuForms API"})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Bearer auth for the whole API surface
	auth := middleware.Auth(cfg, keycloak)

	// Create handlers
	nodeHandler := &handlers.NodeHandler{DB: db}
	documentHandler := &handlers.DocumentHandler{DB: db}
	submissionHandler := &handlers.SubmissionHandler{DB: db, AdminGroup: cfg.AdminGroup}
	userHandler := &handlers.UserHandler{}

	// Tree node routes
	nodes := api.Group("/nodes", auth)
	nodes.Get("/", nodeHandler.GetNodes)
	nodes.Get("/:id", nodeHandler.GetNode)
	nodes.Post("/", nodeHandler.CreateNode)
	nodes.Put("/:id", nodeHandler.UpdateNode)
	nodes.Delete("/:id", nodeHandler.DeleteNode)

	// Document routes
	documents := api.Group("/documents", auth)
	documents.Get("/", documentHandler.GetDocuments)
	documents.Get("/:id", documentHandler.GetDocument)
	documents.Post("/", documentHandler.CreateDocument)
	documents.Put("/:id", documentHandler.UpdateDocument)
	documents.Delete("/:id", documentHandler.DeleteDocument)

	// Submission routes (per-record ownership checks happen in the service)
	submissions := api.Group("/submissions", auth)
	submissions.Get("/", submissionHandler.GetSubmissions)
	submissions.Get("/:id", submissionHandler.GetSubmission)
	submissions.Post("/", submissionHandler.CreateSubmission)
	submissions.Delete("/:id", submissionHandler.DeleteSubmission)

	// User routes
	users := api.Group("/users", auth)
	users.Get("/me", userHandler.GetMe)
	users.Get("/", middleware.RequireAdmin(cfg), userHandler.GetUsers)
	users.Put("/:id", middleware.RequireAdmin(cfg), userHandler.UpdateUser)

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

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Errors raised by middleware carry their own code and type
	var custom *types.CustomError
	if errors.As(err, &custom) {
		code = custom.Code
		message = custom.Message
		errorType = custom.Type
	} else if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
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
