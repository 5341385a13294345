package cmd

import (
	"fmt"

	"site-cleaner/core/config"
	"site-cleaner/core/database"
	"site-cleaner/core/logger"
	"site-cleaner/core/storage"
	"site-cleaner/feature/cleanup/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deps bundles what every command sets up from configuration.
type deps struct {
	cfg    *config.Config
	log    *zap.Logger
	db     *gorm.DB
	client storage.Client
}

// setup loads configuration and the logger, then connects the optional database
// and storage. Failures of the optional parts are logged and leave them nil.
func setup() (*deps, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	rt := &deps{cfg: cfg, log: l}

	if cfg.Database.Driver != "" {
		if db, err := database.Connect(cfg.Database); err != nil {
			l.Warn("Optional database connection failed", zap.Error(err))
		} else if err := database.Migrate(db, &models.CleanupRun{}); err != nil {
			l.Warn("Run history disabled", zap.Error(err))
		} else {
			rt.db = db
			l.Debug("Connected to database", zap.String("driver", cfg.Database.Driver))
		}
	}

	if cfg.Storage.Enabled() {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			l.Warn("Optional storage client failed", zap.Error(err))
		} else {
			rt.client = client
		}
	}

	return rt, nil
}

// checkSiteFiles warns when the database source cannot work against the schema.
func (rt *deps) checkSiteFiles() {
	if rt.db == nil {
		return
	}
	if err := database.RequireColumns(rt.db, "site_files", "site", "path"); err != nil {
		rt.log.Warn("Database manifest source unavailable", zap.Error(err))
	}
}
