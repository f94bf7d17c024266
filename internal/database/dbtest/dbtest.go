// Package dbtest opens migrated throwaway SQLite databases for tests and
// seeds curriculum fixtures.
package dbtest

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/migrations"
)

// New returns a migrated SQLite database living in t's temp dir.
func New(t testing.TB) *database.DB {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "faso_test.db"))
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.RunMigrations(context.Background(), migrations.FS); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

// SubjectID returns the ID of a seeded subject code.
func SubjectID(t testing.TB, db *database.DB, code string) int64 {
	t.Helper()
	var id int64
	if err := db.QueryRowContext(context.Background(), "SELECT id FROM matieres WHERE nom = ?", code).Scan(&id); err != nil {
		t.Fatalf("subject %s: %v", code, err)
	}
	return id
}

// Topic inserts a topic for subject code in grade and returns its ID.
func Topic(t testing.TB, db *database.DB, code, classe, titre string) int64 {
	t.Helper()
	id, err := db.ExecReturningID(context.Background(),
		"INSERT INTO topics (matiere_id, classe, titre, resume, ordre) VALUES (?, ?, ?, ?, ?)",
		SubjectID(t, db, code), classe, titre, "Résumé de "+titre, 0)
	if err != nil {
		t.Fatalf("insert topic: %v", err)
	}
	return id
}

// Exercise inserts a multiple-choice exercise worth points and returns its ID.
func Exercise(t testing.TB, db *database.DB, topicID int64, question string, options []string, correct, points int) int64 {
	t.Helper()
	raw, _ := json.Marshal(options)
	id, err := db.ExecReturningID(context.Background(), `
		INSERT INTO exercices (topic_id, type_exercice, question, options_images, options_text, correct_index,
			feedback_success_text, feedback_fail_text, difficulte, points_recompense, genere_par_ia)
		VALUES (?, 'choix_multiple', ?, '[]', ?, ?, 'Bravo !', 'Essaie encore !', 1, ?, ?)`,
		topicID, question, string(raw), correct, points, false)
	if err != nil {
		t.Fatalf("insert exercise: %v", err)
	}
	return id
}

// Exercises inserts n simple exercises in topicID and returns their IDs.
func Exercises(t testing.TB, db *database.DB, topicID int64, n int) []int64 {
	t.Helper()
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = Exercise(t, db, topicID, fmt.Sprintf("Question %d ?", i+1), []string{"a", "b", "c"}, 0, 10)
	}
	return ids
}

// Learner inserts an active user with a profile in grade and returns the
// user and profile IDs.
func Learner(t testing.TB, db *database.DB, username, classe string) (userID, profilID int64) {
	t.Helper()
	ctx := context.Background()
	userID, err := db.ExecReturningID(ctx,
		"INSERT INTO users (username, password_hash, first_name, last_name, is_active, is_guest) VALUES (?, '', '', '', ?, ?)",
		username, true, false)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	profilID, err = db.ExecReturningID(ctx,
		"INSERT INTO profils (user_id, classe, points, badges) VALUES (?, ?, 0, '[]')", userID, classe)
	if err != nil {
		t.Fatalf("insert profile: %v", err)
	}
	return userID, profilID
}
