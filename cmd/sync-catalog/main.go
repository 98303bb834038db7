package main

import (
	"log"

	"schliessplan_app_go/config"
	"schliessplan_app_go/db"
	"schliessplan_app_go/models"
	"schliessplan_app_go/services"
)

// Pulls the option, catalog-item and question collections from the CMS into
// the local database. Safe to re-run; vanished records are deactivated, not
// deleted.
func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.CMSAPIToken == "" {
		log.Fatal("CMS_API_TOKEN is not set")
	}

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(&models.Option{}, &models.CatalogItem{}, &models.Question{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	client := services.NewCatalogClient(cfg.CMSBaseURL, cfg.CMSAPIToken)
	if err := services.SyncCatalog(db.DB, client); err != nil {
		log.Fatalf("Catalog sync failed: %v", err)
	}

	log.Println("Catalog sync complete")
}
