package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/config"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/database"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/dedup"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/handlers"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/importer"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/lake"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/pipeline"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/scheduler"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/scraper"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/search"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	configPath := getEnv("CONFIG_PATH", "config/estatemind.yaml")
	appConfig, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	// Lake storage: one local blob store per layer
	bronzeStore, err := storage.NewLocalStore(appConfig.Lake.BronzeDir)
	if err != nil {
		log.Fatalf("Failed to open bronze store: %v", err)
	}
	silverStore, err := storage.NewLocalStore(appConfig.Lake.SilverDir)
	if err != nil {
		log.Fatalf("Failed to open silver store: %v", err)
	}
	goldStore, err := storage.NewLocalStore(appConfig.Lake.GoldDir)
	if err != nil {
		log.Fatalf("Failed to open gold store: %v", err)
	}

	// Dedup fingerprint log, loaded fully at startup
	hashStore, err := dedup.NewLogStore(appConfig.Lake.FingerprintLog)
	if err != nil {
		log.Fatalf("Failed to open fingerprint log: %v", err)
	}
	defer hashStore.Close()

	deduplicator, err := dedup.New(hashStore)
	if err != nil {
		log.Fatalf("Failed to load fingerprint log: %v", err)
	}
	log.Printf("Loaded %d known fingerprints", deduplicator.Size())

	bronze := lake.NewBronzeLayer(bronzeStore)
	silver := lake.NewSilverLayer(silverStore, deduplicator)
	gold := lake.NewGoldLayer(goldStore)

	// Initialize database based on configuration
	var listingStore database.ListingStore
	dbType := appConfig.Database.Type
	if dbType == "" {
		dbType = getEnv("DB_TYPE", "")
	}

	switch dbType {
	case "mysql":
		log.Println("Using MySQL with GORM")
		mysqlCfg := appConfig.Database.MySQL
		gormDB, err := database.NewGormDB(
			getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
			getEnvOrConfig(portString(mysqlCfg.Port), "DB_PORT", "3306"),
			getEnvOrConfig(mysqlCfg.User, "DB_USER", "estatemind_user"),
			getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "estatemind_pass"),
			getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "estatemind_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to MySQL: %v", err)
		}
		defer gormDB.Close()
		listingStore = gormDB
	case "postgres":
		log.Println("Using PostgreSQL")
		pgCfg := appConfig.Database.Postgres
		db, err := database.NewDB(
			getEnvOrConfig(pgCfg.Host, "DB_HOST", "db"),
			getEnvOrConfig(portString(pgCfg.Port), "DB_PORT", "5432"),
			getEnvOrConfig(pgCfg.User, "DB_USER", "estatemind_user"),
			getEnvOrConfig(pgCfg.Password, "DB_PASSWORD", "estatemind_pass"),
			getEnvOrConfig(pgCfg.Database, "DB_NAME", "estatemind_db"),
			pgCfg.SSLMode,
		)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		listingStore = db
	default:
		log.Println("No database configured, running lake-only")
	}

	if listingStore != nil {
		if err := listingStore.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	}

	// Initialize Meilisearch when configured
	var searchClient *search.SearchClient
	meilisearchHost := appConfig.Search.Meilisearch.Host
	if meilisearchHost == "" {
		meilisearchHost = getEnv("MEILISEARCH_HOST", "")
	}
	if meilisearchHost != "" {
		meilisearchKey := getEnvOrConfig(appConfig.Search.Meilisearch.APIKey, "MEILISEARCH_KEY", "")
		searchClient = search.NewSearchClient(meilisearchHost, meilisearchKey)
		if err := searchClient.InitIndex(); err != nil {
			log.Printf("Warning: Failed to initialize search index: %v", err)
		}
	} else {
		log.Println("No search host configured, search endpoints disabled")
	}

	// Scraper sources
	client := scraper.NewClient(appConfig.Scraper, appConfig.UserAgent)
	var sources []scraper.Source
	for _, name := range appConfig.Scraper.Sources {
		switch name {
		case "tayara":
			sources = append(sources, scraper.NewTayaraSource(client, appConfig.Scraper.ListPageLimit))
		case "tunisie_annonce":
			sources = append(sources, scraper.NewTunisieAnnonceSource(client, appConfig.Scraper.ListPageLimit))
		case "mubawab":
			sources = append(sources, scraper.NewMubawabSource(client, appConfig.Scraper.ListPageLimit))
		default:
			log.Printf("Warning: Unknown scraper source %q, skipping", name)
		}
	}

	var imp *importer.Importer
	if listingStore != nil {
		imp = importer.New(listingStore, searchClient)
	}

	runner := pipeline.NewRunner(sources, bronze, silver, gold, imp)

	appScheduler := scheduler.NewScheduler(runner, appConfig)
	if err := appScheduler.Start(); err != nil {
		log.Printf("Warning: Failed to start scheduler: %v", err)
	}
	defer appScheduler.Stop()

	// Setup Gin router
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     appConfig.API.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	r.GET("/health", healthCheck)

	analyticsHandler := handlers.NewAnalyticsHandler(gold)
	r.GET("/api/analytics/prices", analyticsHandler.GetPriceAnalytics)
	r.GET("/api/analytics/features", analyticsHandler.GetFeatureAnalytics)
	r.GET("/api/analytics/sizes", analyticsHandler.GetSizeAnalytics)

	valuationHandler := handlers.NewValuationHandler()
	r.POST("/api/valuation", valuationHandler.EstimateValue)

	if listingStore != nil {
		listingHandler := handlers.NewListingHandler(listingStore, searchClient)
		r.GET("/api/listings", listingHandler.GetListings)
		r.GET("/api/listings/:id", listingHandler.GetListing)
		r.GET("/api/search", listingHandler.SearchListings)
	}

	adminHandler := handlers.NewAdminHandler(runner, bronze, silver, gold, deduplicator, listingStore)
	admin := r.Group("/api/admin")
	{
		admin.GET("/stats", adminHandler.GetStats)
		admin.POST("/pipeline/run", adminHandler.TriggerPipeline)
		admin.GET("/pipeline/status", adminHandler.GetPipelineStatus)
	}

	port := getEnv("PORT", fmt.Sprintf("%d", appConfig.API.Port))
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

func portString(port int) string {
	if port <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvOrConfig prefers the config value, then the environment, then
// the fallback.
func getEnvOrConfig(configValue, envKey, fallback string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, fallback)
}
