package main

import (
	"context"
	"flag"
	"log"

	"claim_flow_app_go/config"
	"claim_flow_app_go/db"
	"claim_flow_app_go/models"
	"claim_flow_app_go/services"
	"claim_flow_app_go/services/archive"
)

// Rewrites stored document paths that only resolve through a legacy
// candidate so they point at the key that actually exists.
func main() {
	dryRun := flag.Bool("dry-run", false, "report changes without writing them")
	flag.Parse()

	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	services.InitializeStorage(cfg)
	ctx := context.Background()

	log.Println("Starting document path migration...")

	var docs []models.CaseDocument
	if err := db.DB.Unscoped().Select("id", "file_path").Find(&docs).Error; err != nil {
		log.Fatalf("Failed to fetch documents: %v", err)
	}

	var rewritten, missing int
	for i, doc := range docs {
		res := archive.Resolve(doc.FilePath, func(key string) bool {
			return services.Storage.Exists(ctx, key)
		})
		if !res.Found {
			missing++
			log.Printf("[%d/%d] Document %s not found, tried %v", i+1, len(docs), doc.ID, res.Tried)
			continue
		}
		if res.Path == doc.FilePath {
			continue
		}

		rewritten++
		log.Printf("[%d/%d] %s: %q -> %q", i+1, len(docs), doc.ID, doc.FilePath, res.Path)
		if *dryRun {
			continue
		}
		if err := db.DB.Unscoped().Model(&models.CaseDocument{}).Where("id = ?", doc.ID).
			Update("file_path", res.Path).Error; err != nil {
			log.Printf("Failed to update document %s: %v", doc.ID, err)
		}
	}

	log.Printf("Path migration finished: %d of %d rewritten, %d missing (dry run: %v)",
		rewritten, len(docs), missing, *dryRun)
}
