// Package database manages the connection to the sync history database.
//
// It wraps GORM and supports two drivers: MySQL for shared deployments and
// SQLite for a single operator workstation (the default, a local file).
//
// # Connection
//
// Connect builds the dialector from Config, applies pool settings and pings
// the database with the configured timeout before returning.
//
// # Inspection
//
// GetTableColumns lists the columns of a table (SHOW COLUMNS on MySQL,
// PRAGMA table_info on SQLite) so callers can verify a schema they do not
// migrate themselves.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    logger.Warn("history disabled", zap.Error(err))
//	}
package database
