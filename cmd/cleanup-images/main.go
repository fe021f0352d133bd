package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recordmoa/internal/images"
	"recordmoa/pkg/database"
	"recordmoa/pkg/utils"
)

// Drains the pending_image_deletions table against Cloudinary.
// Run once (default) or on an interval with -every.
func main() {
	schema := flag.String("schema", "docs/schema.sql", "schema file path")
	batch := flag.Int("batch", 100, "max deletions per run")
	every := flag.Duration("every", 0, "run repeatedly at this interval (0 = run once)")
	flag.Parse()

	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.MigrateFile(db, *schema); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	cloudCfg := utils.LoadCloudinaryConfig()
	if cloudCfg.APIKey == "" || cloudCfg.APISecret == "" {
		log.Fatal("RECORDMOA_CLOUDINARY_API_KEY and RECORDMOA_CLOUDINARY_API_SECRET are required")
	}

	cleaner := images.NewCleaner(
		images.NewDeletionQueue(db),
		images.NewClient(cloudCfg),
		log.Default(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := cleaner.Run(ctx, *batch); err != nil {
		log.Fatalf("cleanup failed: %v", err)
	}
	if *every <= 0 {
		return
	}

	ticker := time.NewTicker(*every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Println("stopping")
			return
		case <-ticker.C:
			if _, err := cleaner.Run(ctx, *batch); err != nil {
				log.Printf("cleanup failed: %v", err)
			}
		}
	}
}
