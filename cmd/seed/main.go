// Package main provides a CLI tool to seed the product catalog from a JSON file.
// The file holds an array of product objects matching the batch upsert model.
//
// Usage:
//
//	go run cmd/seed/main.go -file /path/to/products.json -api-url http://localhost:8080 -api-key YOUR_API_KEY
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cartwise/recommender/pkg/cartwise"
)

// batchSize matches the server-side cap on products per upsert call.
const batchSize = 100

// Config holds the CLI configuration
type Config struct {
	FilePath   string
	APIBaseURL string
	APIKey     string
	DelayMS    int
	DryRun     bool
}

// Stats tracks seeding statistics
type Stats struct {
	TotalProducts  int
	SkippedInvalid int
	Indexed        int
	FailedBatches  int
}

func main() {
	cfg := parseFlags()

	if cfg.FilePath == "" {
		fmt.Println("Error: -file is required")
		flag.Usage()
		os.Exit(1)
	}

	if cfg.APIKey == "" && !cfg.DryRun {
		fmt.Println("Error: -api-key is required")
		flag.Usage()
		os.Exit(1)
	}

	fmt.Printf("Cartwise Catalog Seeding Tool\n")
	fmt.Printf("   API URL: %s\n", cfg.APIBaseURL)
	fmt.Printf("   File: %s\n", cfg.FilePath)
	if cfg.DryRun {
		fmt.Printf("   DRY RUN MODE - No actual API calls will be made\n")
	}
	fmt.Println()

	stats := seedCatalog(cfg)

	fmt.Println()
	fmt.Println("Seeding Summary")
	fmt.Printf("   Total products read:   %d\n", stats.TotalProducts)
	fmt.Printf("   Skipped (invalid):     %d\n", stats.SkippedInvalid)
	fmt.Printf("   Successfully indexed:  %d\n", stats.Indexed)
	fmt.Printf("   Failed batches:        %d\n", stats.FailedBatches)
	fmt.Println()

	if stats.FailedBatches > 0 {
		os.Exit(1)
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.FilePath, "file", "", "Path to JSON product catalog file (required)")
	flag.StringVar(&cfg.APIBaseURL, "api-url", "http://localhost:8080", "Recommendation API base URL")
	flag.StringVar(&cfg.APIKey, "api-key", "", "API key for authentication (required unless -dry-run)")
	flag.IntVar(&cfg.DelayMS, "delay", 100, "Delay in milliseconds between batches")
	flag.BoolVar(&cfg.DryRun, "dry-run", false, "Parse the file but don't make API calls")

	flag.Parse()
	return cfg
}

func seedCatalog(cfg Config) Stats {
	stats := Stats{}

	data, err := os.ReadFile(cfg.FilePath)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	var products []cartwise.UpsertProduct
	if err := json.Unmarshal(data, &products); err != nil {
		fmt.Printf("Error parsing file: %v\n", err)
		os.Exit(1)
	}

	stats.TotalProducts = len(products)

	valid := make([]cartwise.UpsertProduct, 0, len(products))
	for i, p := range products {
		if err := validateProduct(p); err != nil {
			fmt.Printf("   [SKIP] Product %d (%s): %v\n", i+1, p.ID, err)
			stats.SkippedInvalid++
			continue
		}
		valid = append(valid, p)
	}

	if cfg.DryRun {
		for _, p := range valid {
			fmt.Printf("   [DRY] %s: %s ($%.2f, %s)\n", p.ID, p.Title, p.Price, p.Category)
		}
		return stats
	}

	client := cartwise.NewClientWithBaseURL(cfg.APIBaseURL, cfg.APIKey)

	fmt.Println("Indexing products...")

	for start := 0; start < len(valid); start += batchSize {
		end := start + batchSize
		if end > len(valid) {
			end = len(valid)
		}
		batch := valid[start:end]

		indexed, err := client.UpsertProducts(batch)
		if err != nil {
			fmt.Printf("   Batch %d-%d failed: %v\n", start+1, end, err)
			stats.FailedBatches++
		} else {
			fmt.Printf("   Batch %d-%d: indexed %d\n", start+1, end, indexed)
			stats.Indexed += indexed
		}

		if cfg.DelayMS > 0 && end < len(valid) {
			time.Sleep(time.Duration(cfg.DelayMS) * time.Millisecond)
		}
	}

	return stats
}

func validateProduct(p cartwise.UpsertProduct) error {
	if p.ID == "" {
		return fmt.Errorf("missing id")
	}
	if p.Title == "" {
		return fmt.Errorf("missing title")
	}
	if p.Category == "" {
		return fmt.Errorf("missing category")
	}
	if p.Price <= 0 {
		return fmt.Errorf("price must be positive")
	}
	return nil
}
