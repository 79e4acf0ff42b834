// Command pipeline runs one end-to-end pipeline pass from the command
// line: scrape, ingest, clean, enrich, recompute analytics and import.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mohamedaziz-ouertatani/estatemind/internal/config"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/database"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/dedup"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/importer"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/lake"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/pipeline"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/scraper"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/search"
	"github.com/mohamedaziz-ouertatani/estatemind/internal/storage"
)

func main() {
	configPath := flag.String("config", "config/estatemind.yaml", "path to YAML configuration")
	skipImport := flag.Bool("skip-import", false, "stop after the gold layer, do not touch the database")
	flag.Parse()

	appConfig, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

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

	hashStore, err := dedup.NewLogStore(appConfig.Lake.FingerprintLog)
	if err != nil {
		log.Fatalf("Failed to open fingerprint log: %v", err)
	}
	defer hashStore.Close()

	deduplicator, err := dedup.New(hashStore)
	if err != nil {
		log.Fatalf("Failed to load fingerprint log: %v", err)
	}

	bronze := lake.NewBronzeLayer(bronzeStore)
	silver := lake.NewSilverLayer(silverStore, deduplicator)
	gold := lake.NewGoldLayer(goldStore)

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
	if len(sources) == 0 {
		log.Fatal("No scraper sources configured")
	}

	var imp *importer.Importer
	if !*skipImport && appConfig.Database.Type != "" {
		store := openListingStore(appConfig)
		defer store.Close()
		if err := store.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}

		var searchClient *search.SearchClient
		if host := appConfig.Search.Meilisearch.Host; host != "" {
			searchClient = search.NewSearchClient(host, appConfig.Search.Meilisearch.APIKey)
			if err := searchClient.InitIndex(); err != nil {
				log.Printf("Warning: Failed to initialize search index: %v", err)
			}
		}
		imp = importer.New(store, searchClient)
	}

	runner := pipeline.NewRunner(sources, bronze, silver, gold, imp)
	result, err := runner.Run(context.Background())
	if err != nil {
		log.Fatalf("Pipeline run failed: %v", err)
	}

	summary, _ := json.MarshalIndent(result, "", "  ")
	fmt.Fprintln(os.Stdout, string(summary))
}

func openListingStore(cfg *config.Config) database.ListingStore {
	switch cfg.Database.Type {
	case "mysql":
		mysqlCfg := cfg.Database.MySQL
		store, err := database.NewGormDB(mysqlCfg.Host, fmt.Sprintf("%d", mysqlCfg.Port),
			mysqlCfg.User, mysqlCfg.Password, mysqlCfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to MySQL: %v", err)
		}
		return store
	case "postgres":
		pgCfg := cfg.Database.Postgres
		store, err := database.NewDB(pgCfg.Host, fmt.Sprintf("%d", pgCfg.Port),
			pgCfg.User, pgCfg.Password, pgCfg.Database, pgCfg.SSLMode)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		return store
	default:
		log.Fatalf("Unknown database type %q", cfg.Database.Type)
		return nil
	}
}
