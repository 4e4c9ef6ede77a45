package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gobenford/domain/benford"
	"gobenford/domain/core"
	"gobenford/internal/config"
	"gobenford/internal/container"
	"gobenford/ports"

	"github.com/joho/godotenv"
)

// migrate applies the run store schema to DATABASE_URL and optionally imports
// JSON reports written by `gobenford analyze --format json`.
func main() {
	if len(os.Args) > 2 {
		log.Fatal("Usage: migrate [report_dir]")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	deps, err := container.New(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize container: %v", err)
	}

	ctx := context.Background()
	if err := deps.InitWithDatabase(ctx); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	defer deps.Shutdown(ctx)
	log.Printf("✅ Run store schema is up to date (%s)", cfg.Database.Driver)

	if len(os.Args) < 2 {
		return
	}

	reportDir := os.Args[1]
	log.Printf("Importing reports from %s", reportDir)

	migrated, skipped, err := importReports(ctx, deps.RunRepo, reportDir)
	if err != nil {
		log.Fatalf("❌ Import failed: %v", err)
	}
	log.Printf("Import complete: %d migrated, %d skipped", migrated, skipped)
}

// importReports saves every JSON report under dir. Files that fail to parse
// or save are logged and skipped.
func importReports(ctx context.Context, runs ports.RunRepository, dir string) (migrated, skipped int, err error) {
	files, err := findReportFiles(dir)
	if err != nil {
		return 0, 0, err
	}

	log.Printf("Found %d report files to import", len(files))

	for _, file := range files {
		report, err := loadReportFromFile(file)
		if err != nil {
			log.Printf("Failed to load report from %s: %v", file, err)
			skipped++
			continue
		}

		if err := runs.Save(ctx, report); err != nil {
			log.Printf("Failed to save run %s: %v", report.RunID, err)
			skipped++
			continue
		}

		migrated++
		log.Printf("Imported run %s from %s", report.RunID, filepath.Base(file))
	}

	return migrated, skipped, nil
}

func findReportFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() && strings.HasSuffix(path, ".json") {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}

func loadReportFromFile(filePath string) (*benford.Report, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var report benford.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}

	if len(report.Sections) == 0 {
		return nil, fmt.Errorf("no analysis sections")
	}
	for _, section := range report.Sections {
		if err := section.Distribution.Position.Validate(); err != nil {
			return nil, err
		}
	}

	// Reports rendered before a run ID was assigned get a fresh one
	if report.RunID == "" {
		report.RunID = core.NewRunID()
	}

	return &report, nil
}
