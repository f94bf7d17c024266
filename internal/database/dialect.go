package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect describes how one SQL engine differs from the ? placeholder,
// LastInsertId baseline the repositories are written against.
type Dialect struct {
	name   string
	driver string

	// numbered engines bind $1, $2, ... instead of ?.
	numbered bool
	// returning engines have no LastInsertId; inserts get RETURNING id.
	returning bool

	dsn        func(DialectConfig) string
	setup      []string
	ledgerDDL  string
	ignoreVerb string
	ignoreTail string
	lockClause string
	// sequenceReset is a fmt pattern taking the table name twice; empty when
	// the engine derives the next id from the table contents.
	sequenceReset string
}

// DialectConfig locates the database: a file path for SQLite, a URL for
// the server engines.
type DialectConfig struct {
	Path string
	URL  string
}

// DialectFor returns the dialect registered under a DATABASE_TYPE value.
func DialectFor(kind string) (*Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "sqlite", "sqlite3", "":
		return SQLite(), nil
	case "postgres", "postgresql":
		return Postgres(), nil
	case "mysql", "mariadb":
		return MySQL(), nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", kind)
}

// Name identifies the engine in logs, health checks and backups.
func (d *Dialect) Name() string { return d.name }

func (d *Dialect) DriverName() string { return d.driver }

func (d *Dialect) DSN(cfg DialectConfig) string { return d.dsn(cfg) }

// MigrationsSubdir is the directory holding this engine's migration scripts.
func (d *Dialect) MigrationsSubdir() string { return d.name }

// MigrationsTableQuery creates the table recording applied migrations.
func (d *Dialect) MigrationsTableQuery() string { return d.ledgerDDL }

// Rebind converts ? placeholders to the engine's bind syntax. Question marks
// inside quoted literals are left alone, French prompts end with them.
func (d *Dialect) Rebind(query string) string {
	if !d.numbered || !strings.Contains(query, "?") {
		return query
	}
	var (
		b     strings.Builder
		n     int
		quote rune
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// InsertIgnoreQuery builds an INSERT that skips rows colliding with a unique
// key, used to open progressions without racing concurrent submissions.
func (d *Dialect) InsertIgnoreQuery(table string, columns []string) string {
	q := d.ignoreVerb + " INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" + Placeholders(len(columns)) + ")"
	if d.ignoreTail != "" {
		q += " " + d.ignoreTail
	}
	return q
}

// RowLockSuffix is appended to a SELECT that must hold its rows until
// commit. SQLite serialises writers and needs none.
func (d *Dialect) RowLockSuffix() string {
	if d.lockClause == "" {
		return ""
	}
	return " " + d.lockClause
}

// ResetSequenceQuery returns the statement that moves table's id counter
// past its current maximum, and false when the engine does that itself.
func (d *Dialect) ResetSequenceQuery(table string) (string, bool) {
	if d.sequenceReset == "" {
		return "", false
	}
	return fmt.Sprintf(d.sequenceReset, table, table), true
}

// configure sizes the pool and runs the per-engine session statements.
func (d *Dialect) configure(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)

	for _, stmt := range d.setup {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

// Placeholders returns n comma-separated ? placeholders for IN clauses.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// withParam appends key=value to a DSN unless key is already present.
func withParam(dsn, key, value string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + value
}
