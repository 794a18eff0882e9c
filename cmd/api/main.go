package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/lintasbill/backend/internal/backup"
	"github.com/lintasbill/backend/internal/config"
	"github.com/lintasbill/backend/internal/database"
	"github.com/lintasbill/backend/internal/handlers"
	"github.com/lintasbill/backend/internal/logtail"
	"github.com/lintasbill/backend/internal/middleware"
	"github.com/lintasbill/backend/internal/models"
	"github.com/lintasbill/backend/internal/services"
	"github.com/lintasbill/backend/internal/settings"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if err := cfg.EnsureDirs(); err != nil {
		log.Fatalf("Failed to create data directories: %v", err)
	}

	// Mirror logs to a file so the log viewer can read them back
	logOut, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		log.Fatalf("Failed to open log file %s: %v", cfg.LogFile, err)
	}
	defer logOut.Close()
	log.SetOutput(io.MultiWriter(os.Stdout, logOut))

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := models.AutoMigrate(database.DB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Load settings (a missing file falls back to defaults)
	store := settings.NewStore(filepath.Join(cfg.DataDir, "settings.json"))
	if err := store.Load(); err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}

	backupManager := backup.NewManager(cfg.DBPath, cfg.BackupDir)
	whatsappService := services.NewWhatsAppService(store)
	offsiteUploader := services.NewOffsiteUploader(store, cfg.BackupDir)
	logReader := logtail.NewReader(cfg.LogFile)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "LintasBill API v1.0",
		ServerHeader: "LintasBill",
		BodyLimit:    20 * 1024 * 1024, // 20MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(middleware.Recovery())
	app.Use(compress.New())
	app.Use(middleware.Logger())
	app.Use(middleware.CORS())

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "lintasbill-api",
		})
	})

	// Serve uploaded files (logos, etc.)
	app.Static("/uploads", cfg.UploadDir)

	// Initialize handlers
	backupHandler := handlers.NewBackupHandler(backupManager, cfg.BackupDir, whatsappService, offsiteUploader)
	settingsHandler := handlers.NewSettingsHandler(store, cfg.UploadDir)
	logsHandler := handlers.NewLogsHandler(logReader)
	mikrotikHandler := handlers.NewMikrotikHandler(store)
	whatsappHandler := handlers.NewWhatsAppHandler(whatsappService)
	packageHandler := handlers.NewPackageHandler()
	customerHandler := handlers.NewCustomerHandler()
	networkHandler := handlers.NewNetworkHandler()

	// API routes
	api := app.Group("/api")

	// Apply rate limiting to API routes (100 requests per minute by default)
	api.Use(middleware.RateLimiter(100, 1*time.Minute))

	// Backup routes
	backups := api.Group("/backups")
	backups.Get("/", backupHandler.List)
	backups.Post("/", backupHandler.Create)
	backups.Post("/test-ftp", backupHandler.TestFTP)
	backups.Get("/:filename/download", backupHandler.Download)
	backups.Post("/:filename/restore", backupHandler.Restore)

	// Settings routes
	settings := api.Group("/settings")
	settings.Get("/", settingsHandler.List)
	settings.Put("/", settingsHandler.Update)
	settings.Post("/logo", settingsHandler.UploadLogo)
	settings.Delete("/logo", settingsHandler.DeleteLogo)

	// Log viewer routes
	api.Get("/logs", logsHandler.List)
	api.Get("/activity", logsHandler.ListActivity)

	// Mikrotik provisioning script routes
	mikrotik := api.Group("/mikrotik")
	mikrotik.Get("/script", mikrotikHandler.Script)
	mikrotik.Get("/script/profiles", mikrotikHandler.Profiles)
	mikrotik.Get("/script/secrets", mikrotikHandler.Secrets)
	mikrotik.Get("/script/address-list", mikrotikHandler.AddressList)

	// WhatsApp gateway routes
	whatsapp := api.Group("/whatsapp")
	whatsapp.Get("/groups", whatsappHandler.Groups)
	whatsapp.Post("/test", whatsappHandler.Test)
	whatsapp.Post("/send", whatsappHandler.Send)

	// Package routes
	packages := api.Group("/packages")
	packages.Get("/", packageHandler.List)
	packages.Get("/:id", packageHandler.Get)
	packages.Post("/", packageHandler.Create)
	packages.Put("/:id", packageHandler.Update)
	packages.Delete("/:id", packageHandler.Delete)

	// Customer routes
	customers := api.Group("/customers")
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.Get)
	customers.Post("/", customerHandler.Create)
	customers.Put("/:id", customerHandler.Update)
	customers.Put("/:id/status", customerHandler.UpdateStatus)
	customers.Delete("/:id", customerHandler.Delete)

	// Network map routes (read-only)
	network := api.Group("/network")
	network.Get("/odps", networkHandler.ListODPs)
	network.Get("/odps/:id", networkHandler.GetODP)
	network.Get("/cable-routes", networkHandler.ListCableRoutes)
	network.Get("/segments", networkHandler.ListSegments)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		app.Shutdown()
	}()

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	log.Printf("Starting LintasBill API server on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
