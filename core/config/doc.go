// Package config provides configuration management for record-sync.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file. Defaults are declared on the partial config
// structs through `default` struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Remote: record store endpoints, client credentials, account and company
//   - Database: sync history database (mysql or sqlite)
//   - Storage: S3/MinIO credentials and the workbook archive bucket
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Remote.BaseURL)
package config
