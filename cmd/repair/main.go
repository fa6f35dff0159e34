// Command repair scans published stories for corrupted content and
// restores it from the originating submission. Each repaired story is
// archived to object storage beforehand; stories that cannot be
// restored are flagged for manual review.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/backup"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/config"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/repair"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/revisions"
	"github.com/ArunKumar10905/MY-REPO-SilentStories/internal/store"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would be repaired without writing anything")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	var archiver repair.Backup
	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		a, err := backup.New(ctx, backup.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			log.Fatalf("object storage connection failed: %v", err)
		}
		archiver = a
	} else if !*dryRun {
		log.Printf("WARNING: MINIO_ENDPOINT not set, repairing without pre-repair backups")
	}

	runner := repair.NewRunner(store.NewPostgresStore(db), archiver, revisions.New(cfg.RevisionsDir), *dryRun)
	summary, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("repair run failed: %v", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summary); err != nil {
		log.Fatalf("encode summary: %v", err)
	}
	if summary.Failed > 0 {
		os.Exit(1)
	}
}
