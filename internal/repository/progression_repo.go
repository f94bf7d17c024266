package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
)

// ProgressionRepository handles database operations for per-topic progressions
type ProgressionRepository struct {
	db database.DBTX
}

// NewProgressionRepository creates a new progression repository
func NewProgressionRepository(db database.DBTX) *ProgressionRepository {
	return &ProgressionRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *ProgressionRepository) WithTx(tx *database.Tx) *ProgressionRepository {
	return &ProgressionRepository{db: tx}
}

const progressionColumns = `p.id, p.profil_id, p.topic_id, p.score_total, p.exercices_reussis, p.exercices_total,
	p.erreurs_consecutives, p.date_derniere_activite`

func scanProgression(row rowScanner, extra ...interface{}) (*models.Progression, error) {
	p := &models.Progression{}
	dest := []interface{}{
		&p.ID,
		&p.ProfilID,
		&p.TopicID,
		&p.ScoreTotal,
		&p.ExercicesReussis,
		&p.ExercicesTotal,
		&p.ErreursConsecutives,
		&p.DateDerniereActivite,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return p, nil
}

// Ensure creates the (profile, topic) row when it does not exist yet
func (r *ProgressionRepository) Ensure(ctx context.Context, profilID, topicID int64) error {
	query := r.db.GetDialect().InsertIgnoreQuery("progressions",
		[]string{"profil_id", "topic_id", "score_total", "exercices_reussis", "exercices_total", "erreurs_consecutives", "date_derniere_activite"})
	_, err := r.db.ExecContext(ctx, query, profilID, topicID, 0, 0, 0, 0, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to ensure progression: %w", err)
	}
	return nil
}

// Lock reads the (profile, topic) row, locking it for the rest of the
// transaction on engines that support row locks
func (r *ProgressionRepository) Lock(ctx context.Context, profilID, topicID int64) (*models.Progression, error) {
	query := "SELECT " + progressionColumns + " FROM progressions p WHERE p.profil_id = ? AND p.topic_id = ?" +
		r.db.GetDialect().RowLockSuffix()
	p, err := scanProgression(r.db.QueryRowContext(ctx, query, profilID, topicID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock progression: %w", err)
	}
	return p, nil
}

// Get retrieves the (profile, topic) row
func (r *ProgressionRepository) Get(ctx context.Context, profilID, topicID int64) (*models.Progression, error) {
	query := "SELECT " + progressionColumns + " FROM progressions p WHERE p.profil_id = ? AND p.topic_id = ?"
	p, err := scanProgression(r.db.QueryRowContext(ctx, query, profilID, topicID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progression: %w", err)
	}
	return p, nil
}

// ApplyAttempt records one graded attempt on the (profile, topic) row.
// A success adds score and resets the failure streak; a failure extends it.
func (r *ProgressionRepository) ApplyAttempt(ctx context.Context, profilID, topicID int64, correct bool, score int) error {
	var query string
	var args []interface{}
	now := time.Now().UTC()
	if correct {
		query = `
			UPDATE progressions
			SET exercices_total = exercices_total + 1,
				exercices_reussis = exercices_reussis + 1,
				score_total = score_total + ?,
				erreurs_consecutives = 0,
				date_derniere_activite = ?
			WHERE profil_id = ? AND topic_id = ?
		`
		args = []interface{}{score, now, profilID, topicID}
	} else {
		query = `
			UPDATE progressions
			SET exercices_total = exercices_total + 1,
				erreurs_consecutives = erreurs_consecutives + 1,
				date_derniere_activite = ?
			WHERE profil_id = ? AND topic_id = ?
		`
		args = []interface{}{now, profilID, topicID}
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update progression: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("failed to update progression: no row for profile %d topic %d", profilID, topicID)
	}
	return nil
}

// ListByProfile returns a profile's progressions with their topics, most recent first
func (r *ProgressionRepository) ListByProfile(ctx context.Context, profilID int64) ([]models.Progression, error) {
	query := "SELECT " + progressionColumns + `,
			t.id, t.matiere_id, m.nom, t.classe, t.titre, t.resume, t.image_url, t.audio_url, t.ordre
		FROM progressions p
		JOIN topics t ON t.id = p.topic_id
		JOIN matieres m ON m.id = t.matiere_id
		WHERE p.profil_id = ?
		ORDER BY p.date_derniere_activite DESC, p.id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, profilID)
	if err != nil {
		return nil, fmt.Errorf("failed to query progressions: %w", err)
	}
	defer rows.Close()

	var progressions []models.Progression
	for rows.Next() {
		t := &models.Topic{}
		p, err := scanProgression(rows,
			&t.ID, &t.MatiereID, &t.MatiereCode, &t.Classe, &t.Titre, &t.Resume, &t.ImageURL, &t.AudioURL, &t.Ordre)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progression: %w", err)
		}
		p.Topic = t
		progressions = append(progressions, *p)
	}
	return progressions, rows.Err()
}
