package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"maskwatch/internal/config"
	"maskwatch/internal/repository/sqlite"
	"maskwatch/internal/service/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	imagesDir := flag.String("images", cfg.ImageDirectory, "Directory containing snapshots")
	dbPath := flag.String("db", cfg.DatabasePath, "Database path")
	flag.Parse()

	fmt.Printf("Indexing snapshots from %s into %s\n", *imagesDir, *dbPath)

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	repo := sqlite.NewSnapshotRepository(db)

	result, err := storage.Reindex(*imagesDir, repo)
	if err != nil {
		log.Fatalf("Failed to index snapshots: %v", err)
	}

	fmt.Printf("Indexed %d snapshots\n", result.Indexed)
	for _, name := range result.Skipped {
		fmt.Printf("Skipped %s (not a snapshot filename)\n", name)
	}

	stats, err := repo.GetStats()
	if err != nil {
		log.Printf("Failed to read stats: %v", err)
		return
	}
	fmt.Printf("\nDatabase statistics:\n")
	fmt.Printf("   Total snapshots: %d\n", stats.TotalSnapshots)
	fmt.Printf("   Total size: %d bytes\n", stats.TotalSizeBytes)
	for camera, count := range stats.PerCamera {
		fmt.Printf("      - %s: %d snapshots\n", camera, count)
	}
}
