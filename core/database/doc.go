// Package database handles database connections and schema checks.
//
// It wraps GORM to open MySQL or SQLite connections from the application's
// configuration. The database is optional: without it the cleaner still works,
// but run history and the database manifest source are unavailable.
//
// # Connect
//
// Connect picks the dialector from Config.Driver, applies timeouts and pool settings
// and pings the database before returning it.
//
// # Schema
//
// Migrate auto-migrates tables owned by this application (cleanup runs).
// RequireColumns inspects tables owned by site generators, such as site_files,
// without modifying them.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	err = database.RequireColumns(db, "site_files", "site", "path")
package database
