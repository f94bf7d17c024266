package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
)

// SubmissionRepository handles database operations for answer submissions
type SubmissionRepository struct {
	db database.DBTX
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db database.DBTX) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *SubmissionRepository) WithTx(tx *database.Tx) *SubmissionRepository {
	return &SubmissionRepository{db: tx}
}

// Create records an answer attempt and sets its ID
func (r *SubmissionRepository) Create(ctx context.Context, s *models.Submission) error {
	if s.DateSoumission.IsZero() {
		s.DateSoumission = time.Now().UTC()
	}
	query := `
		INSERT INTO soumissions (profil_id, exercice_id, reponse_index, est_correcte, score, temps_reponse, date_soumission)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		s.ProfilID, s.ExerciceID, s.ReponseIndex, s.EstCorrecte, s.Score, s.TempsReponse, s.DateSoumission)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	s.ID = id
	return nil
}

// MasteredExerciseIDs returns the exercises of a topic the profile has
// answered correctly at least once
func (r *SubmissionRepository) MasteredExerciseIDs(ctx context.Context, profilID, topicID int64) ([]int64, error) {
	query := `
		SELECT DISTINCT s.exercice_id
		FROM soumissions s
		JOIN exercices e ON e.id = s.exercice_id
		WHERE s.profil_id = ? AND e.topic_id = ? AND s.est_correcte = ?
		ORDER BY s.exercice_id
	`
	rows, err := r.db.QueryContext(ctx, query, profilID, topicID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to query mastered exercises: %w", err)
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan mastered exercises: %w", err)
	}
	return ids, nil
}

// CountByProfile returns the number of submissions of a profile
func (r *SubmissionRepository) CountByProfile(ctx context.Context, profilID int64) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM soumissions WHERE profil_id = ?", profilID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}
