package database

import (
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the default engine, used for development and tests.
func SQLite() *Dialect {
	return &Dialect{
		name:   "sqlite",
		driver: "sqlite3",
		// PRAGMAs run through Exec reach a single pooled connection, so
		// foreign keys and the busy timeout go in the DSN.
		dsn: func(cfg DialectConfig) string {
			if strings.Contains(cfg.Path, "?") {
				return cfg.Path
			}
			return cfg.Path + "?_foreign_keys=on&_busy_timeout=5000"
		},
		setup: []string{"PRAGMA journal_mode=WAL"},
		ledgerDDL: `CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT UNIQUE NOT NULL,
			executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		ignoreVerb: "INSERT OR IGNORE",
	}
}

// Postgres is the production engine.
func Postgres() *Dialect {
	return &Dialect{
		name:      "postgres",
		driver:    "postgres",
		numbered:  true,
		returning: true,
		dsn:       func(cfg DialectConfig) string { return cfg.URL },
		ledgerDDL: `CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)`,
		ignoreVerb:    "INSERT",
		ignoreTail:    "ON CONFLICT DO NOTHING",
		lockClause:    "FOR UPDATE",
		sequenceReset: "SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE((SELECT MAX(id) FROM %s), 0) + 1, false)",
	}
}

// MySQL covers MySQL and MariaDB.
func MySQL() *Dialect {
	return &Dialect{
		name:   "mysql",
		driver: "mysql",
		// DATETIME columns only scan into time.Time with parseTime.
		dsn: func(cfg DialectConfig) string {
			return withParam(withParam(cfg.URL, "parseTime", "true"), "charset", "utf8mb4")
		},
		setup: []string{"SET FOREIGN_KEY_CHECKS = 1"},
		ledgerDDL: `CREATE TABLE IF NOT EXISTS migrations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		)`,
		ignoreVerb: "INSERT IGNORE",
		lockClause: "FOR UPDATE",
	}
}
