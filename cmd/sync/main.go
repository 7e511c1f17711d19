// Command sync reconciles the canonical locations dataset against the
// remote search index, applying only the minimal add/update/delete sets.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"inmuebles-portal/internal/aliases"
	"inmuebles-portal/internal/config"
	"inmuebles-portal/internal/locations"
	"inmuebles-portal/internal/search"
)

func main() {
	var (
		filePath    = flag.String("file", "", "locations dataset, defaults to the configured path")
		prune       = flag.Bool("prune", false, "delete remote records absent from the local dataset")
		dryRun      = flag.Bool("dry-run", false, "report counts without writing")
		envSuffix   = flag.String("env", "", "index name suffix, e.g. staging")
		aliasesPath = flag.String("aliases", "", "optional alias table (.yaml) for synonym settings")
		configPath  = flag.String("config", getEnv("CONFIG_PATH", "config/config.yaml"), "config file")
	)
	flag.Parse()

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	meili := cfg.Search.Meilisearch
	if !meili.Configured() {
		logger.Fatal("remote index is not configured: set MEILISEARCH_HOST and MEILISEARCH_KEY")
	}

	path := *filePath
	if path == "" {
		path = cfg.Dataset.Path
	}
	records, err := locations.Load(path)
	if err != nil {
		logger.WithError(err).Fatal("failed to load locations dataset")
	}

	aliasPath := *aliasesPath
	if aliasPath == "" {
		aliasPath = cfg.Dataset.Aliases
	}
	table, err := aliases.Load(aliasPath)
	if err != nil {
		logger.WithError(err).Fatal("failed to load alias table")
	}

	indexName := meili.IndexName(*envSuffix)
	index := search.NewLocationIndex(meili.Host, meili.APIKey, indexName, meili.Timeout(), logger)

	syncer := search.NewSyncer(index, logger)
	if cfg.Sync.BatchSize > 0 {
		syncer.BatchSize = cfg.Sync.BatchSize
	}
	if cfg.Sync.MaxRetries > 0 {
		syncer.MaxRetries = cfg.Sync.MaxRetries
	}

	report, err := syncer.Run(records, table.Synonyms, search.SyncOptions{
		Prune:  *prune,
		DryRun: *dryRun,
	})
	if err != nil {
		logger.WithError(err).Fatal("sync failed")
	}

	mode := ""
	if *dryRun {
		mode = " (dry run)"
	}
	fmt.Printf("Sync of %q completed%s\n", indexName, mode)
	fmt.Printf("  added:   %d\n", report.Added)
	fmt.Printf("  updated: %d\n", report.Updated)
	fmt.Printf("  deleted: %d\n", report.Deleted)
	fmt.Printf("  skipped: %d\n", report.Skipped)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
