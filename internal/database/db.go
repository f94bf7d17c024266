package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/CheickOuedraogo/tuteur-backend/internal/config"
)

// DB is a connection pool that rebinds ? placeholders for its engine.
type DB struct {
	*sql.DB
	Dialect *Dialect
}

// Initialize opens a SQLite database at dbPath. Used by tests and local tooling.
func Initialize(dbPath string) (*DB, error) {
	return Open(SQLite(), DialectConfig{Path: dbPath})
}

// InitializeWithConfig opens the engine selected by DATABASE_TYPE.
func InitializeWithConfig(cfg *config.Config) (*DB, error) {
	dialect, err := DialectFor(cfg.DatabaseType)
	if err != nil {
		return nil, err
	}
	return Open(dialect, DialectConfig{Path: cfg.DatabasePath, URL: cfg.DatabaseURL})
}

// Open connects with dialect, verifies the connection and applies the
// engine's session settings.
func Open(dialect *Dialect, loc DialectConfig) (*DB, error) {
	pool, err := sql.Open(dialect.DriverName(), dialect.DSN(loc))
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect.Name(), err)
	}
	if err := pool.Ping(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s database: %w", dialect.Name(), err)
	}
	if err := dialect.configure(pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("configure %s connection: %w", dialect.Name(), err)
	}
	return &DB{DB: pool, Dialect: dialect}, nil
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.DB.QueryContext(ctx, db.Dialect.Rebind(query), args...)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRowContext(ctx, db.Dialect.Rebind(query), args...)
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return db.DB.ExecContext(ctx, db.Dialect.Rebind(query), args...)
}

// ExecReturningID runs an INSERT and returns the id of the new row.
func (db *DB) ExecReturningID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	return insertID(ctx, db.DB, db.Dialect, query, args)
}

func (db *DB) GetDialect() *Dialect {
	return db.Dialect
}

// rawConn is satisfied by *sql.DB and *sql.Tx.
type rawConn interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func insertID(ctx context.Context, conn rawConn, dialect *Dialect, query string, args []interface{}) (int64, error) {
	query = dialect.Rebind(query)
	if !dialect.returning {
		res, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	query = strings.TrimSuffix(strings.TrimSpace(query), ";") + " RETURNING id"
	var id int64
	err := conn.QueryRowContext(ctx, query, args...).Scan(&id)
	return id, err
}
