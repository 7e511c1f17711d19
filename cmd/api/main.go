package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"inmuebles-portal/internal/aliases"
	"inmuebles-portal/internal/catalog"
	"inmuebles-portal/internal/config"
	"inmuebles-portal/internal/database"
	"inmuebles-portal/internal/handlers"
	"inmuebles-portal/internal/locations"
	"inmuebles-portal/internal/ratelimit"
	"inmuebles-portal/internal/scheduler"
	"inmuebles-portal/internal/search"
)

func main() {
	configPath := getEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	logger := newLogger(cfg.Logging)
	logger.WithField("config", configPath).Info("configuration loaded")

	// Property catalog store; nil means the JSON seed file serves the
	// catalog.
	store, err := database.Open(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	var source catalog.Source
	if store != nil {
		defer store.Close()
		if err := store.InitSchema(); err != nil {
			logger.WithError(err).Fatal("failed to initialize schema")
		}
		source = store
		logger.WithField("type", cfg.Database.Type).Info("catalog database connected")
	} else {
		source = catalog.FileSource(cfg.Catalog.Path)
		logger.WithField("path", cfg.Catalog.Path).Info("catalog served from seed file")
	}

	snapshot := catalog.NewSnapshot(source)
	if err := snapshot.Reload(); err != nil {
		logger.WithError(err).Warn("catalog snapshot is empty")
	}

	aliasTable, err := aliases.Load(cfg.Dataset.Aliases)
	if err != nil {
		logger.WithError(err).Fatal("failed to load alias table")
	}

	// Backend selection happens once at startup: a configured remote
	// index means remote mode; its absence means local-fallback mode.
	// A configured-but-failing index surfaces errors per request.
	meili := cfg.Search.Meilisearch
	var (
		resolver *search.Resolver
		dataset  *locations.Dataset
		sched    *scheduler.Scheduler
	)
	if meili.Configured() {
		index := search.NewLocationIndex(meili.Host, meili.APIKey, meili.IndexName(""), meili.Timeout(), logger)
		resolver = search.NewResolver(search.NewRemoteBackend(index))
		logger.WithField("index", meili.IndexName("")).Info("location search: remote index mode")

		if cfg.Sync.DailyEnabled {
			sched = scheduler.New(cfg.Sync, logger, func() error {
				records, err := locations.Load(cfg.Dataset.Path)
				if err != nil {
					return err
				}
				syncer := search.NewSyncer(index, logger)
				if cfg.Sync.BatchSize > 0 {
					syncer.BatchSize = cfg.Sync.BatchSize
				}
				if cfg.Sync.MaxRetries > 0 {
					syncer.MaxRetries = cfg.Sync.MaxRetries
				}
				_, err = syncer.Run(records, aliasTable.Synonyms, search.SyncOptions{Prune: true})
				return err
			})
			if err := sched.Start(); err != nil {
				logger.WithError(err).Warn("failed to start sync scheduler")
			} else {
				defer sched.Stop()
			}
		}
	} else {
		dataset, err = locations.Open(cfg.Dataset.Path)
		if err != nil {
			logger.WithError(err).Fatal("remote index unconfigured and local dataset unavailable")
		}
		resolver = search.NewResolver(search.NewLocalBackend(dataset))
		logger.WithFields(logrus.Fields{
			"path":    cfg.Dataset.Path,
			"records": dataset.Len(),
		}).Info("location search: local fallback mode")
	}

	limiter := ratelimit.New(
		cfg.RateLimit.RequestsPerMinute,
		cfg.RateLimit.RequestsPerHour,
		cfg.RateLimit.Enabled,
	)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	h := handlers.New(logger, resolver, snapshot, store, dataset, limiter)
	h.Register(r)

	logger.WithField("port", cfg.Server.Port).Info("server starting")
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.Level); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
