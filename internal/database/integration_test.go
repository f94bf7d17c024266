package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/CheickOuedraogo/tuteur-backend/migrations"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Initialize(filepath.Join(t.TempDir(), "faso_test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDatabaseIntegration tests the complete migration lifecycle
func TestDatabaseIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db := openTestDB(t)

	applied, err := db.RunMigrations(ctx, migrations.FS)
	if err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	if len(applied) != 2 {
		t.Errorf("RunMigrations() applied %v, want 2 files", applied)
	}

	tables := []string{"users", "profils", "matieres", "topics", "exercices", "soumissions", "progressions"}
	for _, table := range tables {
		var name string
		err := db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s not found: %v", table, err)
		}
	}

	var subjects int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM matieres").Scan(&subjects); err != nil {
		t.Fatalf("count matieres: %v", err)
	}
	if subjects != 27 {
		t.Errorf("seeded matieres = %d, want 27", subjects)
	}

	// Second run is a no-op.
	applied, err = db.RunMigrations(ctx, migrations.FS)
	if err != nil {
		t.Fatalf("second RunMigrations() error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("second RunMigrations() applied %v, want none", applied)
	}
}

// TestDatabaseTransactions tests commit and rollback through WithTx
func TestDatabaseTransactions(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db := openTestDB(t)
	if _, err := db.RunMigrations(ctx, migrations.FS); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	var insertedID int64
	err := db.WithTx(ctx, func(tx *Tx) error {
		id, err := tx.ExecReturningID(ctx, "INSERT INTO users (username, password_hash) VALUES (?, ?)", "awa", "x")
		insertedID = id
		return err
	})
	if err != nil {
		t.Fatalf("WithTx() commit error = %v", err)
	}
	if insertedID == 0 {
		t.Fatal("ExecReturningID() returned 0")
	}

	boom := errors.New("boom")
	err = db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO users (username, password_hash) VALUES (?, ?)", "issa", "x"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Errorf("users after rollback = %d, want 1", count)
	}
}

// TestCascadeDelete checks that deleting a user removes its profile rows.
func TestCascadeDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	db := openTestDB(t)
	if _, err := db.RunMigrations(ctx, migrations.FS); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}

	userID, err := db.ExecReturningID(ctx, "INSERT INTO users (username, password_hash) VALUES (?, ?)", "anonyme_abcd1234", "")
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if _, err := db.ExecContext(ctx, "INSERT INTO profils (user_id, classe, badges) VALUES (?, ?, ?)", userID, "cp1", "[]"); err != nil {
		t.Fatalf("insert profil: %v", err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", userID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profils").Scan(&count); err != nil {
		t.Fatalf("count profils: %v", err)
	}
	if count != 0 {
		t.Errorf("profils after cascade = %d, want 0", count)
	}
}
