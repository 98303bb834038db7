package main

import (
	"log"
	"time"

	"schliessplan_app_go/config"
	"schliessplan_app_go/db"
	"schliessplan_app_go/handlers"
	"schliessplan_app_go/middleware"
	"schliessplan_app_go/models"
	"schliessplan_app_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Option{},
		&models.CatalogItem{},
		&models.Question{},
		&models.SavedPlan{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed the fallback vocabulary so the questionnaire works before the
	// first CMS sync
	if err := services.SeedFallbackCatalog(db.DB); err != nil {
		log.Fatalf("Failed to seed fallback catalog: %v", err)
	}

	// Initialize storage (R2 or local fallback)
	services.InitializeStorage(cfg)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Static files
	e.Static("/static", "static")

	// Public routes (no authentication required)
	e.POST("/api/auth/register", handlers.RegisterHandler, middleware.LoginRateLimiter.Middleware())
	e.POST("/api/auth/login", handlers.LoginHandler, middleware.LoginRateLimiter.Middleware())
	e.POST("/api/auth/logout", handlers.LogoutHandler)

	e.GET("/api/questions", handlers.GetQuestionsHandler)
	e.GET("/api/options/:category", handlers.GetOptionsHandler)
	e.POST("/api/recommendations", handlers.RecommendationsHandler)

	// Protected routes (authentication required)
	protected := e.Group("/api")
	protected.Use(middleware.RequireAuth())
	{
		protected.GET("/auth/me", handlers.MeHandler)

		protected.POST("/plans", handlers.CreatePlanHandler)
		protected.GET("/plans", handlers.ListPlansHandler)
		protected.GET("/plans/:id", handlers.GetPlanHandler)
		protected.DELETE("/plans/:id", handlers.DeletePlanHandler)
		protected.POST("/plans/:id/ops", handlers.PlanOperationHandler)
		protected.PUT("/plans/:id/name", handlers.RenamePlanHandler)
		protected.PUT("/plans/:id/status", handlers.SetPlanStatusHandler)

		exportLimit := middleware.ExportRateLimiter.Middleware()
		protected.GET("/plans/:id/export.xlsx", handlers.ExportPlanXLSXHandler, exportLimit)
		protected.GET("/plans/:id/export.html", handlers.ExportPlanHTMLHandler, exportLimit)
		protected.GET("/plans/:id/export.pdf", handlers.ExportPlanPDFHandler, exportLimit)
		protected.POST("/plans/:id/send", handlers.SendPlanHandler, exportLimit)
	}

	// Refresh the catalog from the CMS on startup when configured; the
	// fallback vocabulary covers a CMS outage
	if cfg.CMSAPIToken != "" {
		go func() {
			client := services.NewCatalogClient(cfg.CMSBaseURL, cfg.CMSAPIToken)
			if err := services.SyncCatalog(db.DB, client); err != nil {
				log.Printf("[WARNING] Catalog sync failed: %v", err)
			}
		}()
	}

	// Start background cleanup jobs (runs every hour)
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := services.CleanupExpiredSessions(db.DB); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
