// Package config provides configuration management for the site cleaner.
//
// It uses Viper to read environment variables, optionally seeded from a .env file.
// Defaults come from the `default` struct tags of each section. LoadConfig rejects
// unsupported drivers, relative allowed roots and similar mistakes up front.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP port and API key
//   - Database: MySQL or SQLite connection details
//   - Storage: S3/MinIO credentials and bucket settings
//   - Log: Logging level and format
//   - Cleaner: destination root, keep patterns and manifest source
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Cleaner.KeepPatterns())
package config
