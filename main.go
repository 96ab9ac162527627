package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"projectdrive/config"
	"projectdrive/database"
	"projectdrive/routes"
	"projectdrive/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize application
	app, err := NewApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Start the application
	if err := app.Start(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// Application represents the main application structure
type Application struct {
	config       *config.Config
	server       *http.Server
	dbManager    *config.DatabaseManager
	driveManager *config.DriveManager
	templates    *services.TemplateRegistry
	router       *gin.Engine
}

// NewApplication creates and initializes a new application instance
func NewApplication() (*Application, error) {
	// Load configuration
	cfg := config.LoadConfig()
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	app := &Application{
		config:       cfg,
		dbManager:    config.NewDatabaseManager(cfg),
		driveManager: config.NewDriveManager(cfg),
	}

	// Initialize router
	app.router = app.setupRouter()

	// Content passthrough can hold a connection for minutes, so the
	// server timeouts are sized for transfers, not plain API calls.
	app.server = &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Start initializes all components and starts the HTTP server
func (app *Application) Start() error {
	log.Printf("Starting %s v%s in %s mode",
		app.config.AppName,
		app.config.AppVersion,
		app.config.Environment)

	// Log startup info
	app.logStartupInfo()

	// Initialize database
	if err := app.initializeDatabase(); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}

	// Initialize the drive client
	if err := app.driveManager.Initialize(); err != nil {
		log.Fatalf("Drive initialization failed: %v", err)
	}

	// Load folder templates
	if err := app.initializeTemplates(); err != nil {
		log.Fatalf("Template initialization failed: %v", err)
	}

	// Setup routes
	app.setupRoutes()

	// Start background jobs
	app.startBackgroundJobs()

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", app.server.Addr)
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	app.waitForShutdown()

	return nil
}

// initializeDatabase sets up database connection and runs migrations
func (app *Application) initializeDatabase() error {
	log.Println("Initializing database...")

	// Connect to database first
	if err := app.dbManager.Initialize(); err != nil {
		return err
	}

	// Setup database (creates indexes and runs migrations)
	if err := app.dbManager.SetupDatabase(); err != nil {
		return err
	}

	log.Println("Database initialization completed successfully")
	return nil
}

// initializeTemplates loads the folder template registry
func (app *Application) initializeTemplates() error {
	if app.config.TemplatesFile != "" {
		registry, err := services.NewTemplateRegistryFromFile(app.config.TemplatesFile)
		if err != nil {
			return err
		}
		app.templates = registry
		log.Printf("Loaded %d folder templates from %s", len(registry.IDs()), app.config.TemplatesFile)
		return nil
	}

	app.templates = services.NewTemplateRegistry()
	log.Printf("Using %d built-in folder templates", len(app.templates.IDs()))
	return nil
}

// setupRoutes configures all application routes and middleware
func (app *Application) setupRoutes() {
	routes.SetupRoutes(app.router, app.driveManager.Client(), app.templates)
	log.Println("Routes configured successfully")
}

func (app *Application) setupRouter() *gin.Engine {
	router := gin.New()

	// Trust proxies for proper client IP detection
	router.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	// Global middleware (order matters)
	router.Use(gin.Recovery())

	// Health check endpoint (before other middleware)
	router.GET("/health", app.healthCheckHandler())
	router.GET("/version", versionHandler())

	return router
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (app *Application) waitForShutdown() {
	// Create channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until signal is received
	<-quit
	log.Println("Shutdown signal received...")

	// Gracefully shutdown with timeout
	app.shutdown()
}

// shutdown gracefully shuts down the application
func (app *Application) shutdown() {
	log.Println("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Close database connection
	if err := app.dbManager.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Println("Server shutdown complete")
}

// healthCheckHandler reports database and drive credential health
func (app *Application) healthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"service":   "projectdrive",
			"version":   config.AppConfig.AppVersion,
			"timestamp": time.Now().Unix(),
		}

		// Add database health check
		if database.GetDatabase() != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := database.GetDatabase().Client().Ping(ctx, nil); err != nil {
				health["status"] = "degraded"
				health["database"] = "unhealthy"
			} else {
				health["database"] = "healthy"
			}
		} else {
			health["status"] = "degraded"
			health["database"] = "not_connected"
		}

		// Add drive credential state
		credentialState := app.driveManager.CredentialState()
		health["drive_credentials"] = credentialState
		if credentialState == "error" {
			health["status"] = "degraded"
		}

		c.JSON(http.StatusOK, health)
	}
}

// Version handler
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        config.AppConfig.AppName,
			"version":     config.AppConfig.AppVersion,
			"environment": config.AppConfig.Environment,
		})
	}
}

func (app *Application) startBackgroundJobs() {
	// Periodic reconciliation job
	if app.config.ReconcileInterval > 0 {
		drive := app.driveManager.Client()
		mappings := services.NewMappingService()
		projects := services.NewProjectService()
		settings := services.NewSettingsService(drive)
		provision := services.NewProvisionService(drive, app.templates, mappings, settings)
		reconciler := services.NewReconcileService(drive, mappings, projects, provision, settings)

		go func() {
			ticker := time.NewTicker(app.config.ReconcileInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					report, err := reconciler.ReconcileOrphans()
					if err != nil {
						log.Printf("Periodic reconciliation failed: %v", err)
						continue
					}
					if report.Total > 0 {
						log.Printf("Periodic reconciliation: %d mapped, %d created, %d errors",
							report.Mapped, report.Created, report.Errors)
					}
				}
			}
		}()

		log.Printf("Periodic reconciliation enabled every %s", app.config.ReconcileInterval)
	}

	// Orphaned index cleanup job
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := app.dbManager.CleanupOldData(); err != nil {
					log.Printf("Database cleanup failed: %v", err)
				}
			}
		}
	}()

	log.Println("Background jobs started successfully")
}

// logStartupInfo logs important startup information
func (app *Application) logStartupInfo() {
	log.Printf("=== %s v%s ===", app.config.AppName, app.config.AppVersion)
	log.Printf("Environment: %s", app.config.Environment)
	log.Printf("Database: %s", app.config.DBName)
	log.Printf("Drive API: %s", app.config.DriveBaseURL)
	if app.config.TemplatesFile != "" {
		log.Printf("Templates File: %s", app.config.TemplatesFile)
	}
	if app.config.ReconcileInterval > 0 {
		log.Printf("Reconcile Interval: %s", app.config.ReconcileInterval)
	} else {
		log.Println("Reconcile Interval: disabled")
	}
	log.Printf("Rate Limiting: %t", app.config.RateLimitEnabled)
	if app.config.Debug {
		log.Println("Debug mode enabled")
	}
	log.Println("=========================")
}
