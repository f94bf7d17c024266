package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
)

// ExerciseRepository handles database operations for exercises
type ExerciseRepository struct {
	db database.DBTX
}

// NewExerciseRepository creates a new exercise repository
func NewExerciseRepository(db database.DBTX) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *ExerciseRepository) WithTx(tx *database.Tx) *ExerciseRepository {
	return &ExerciseRepository{db: tx}
}

const exerciseSelect = `
	SELECT e.id, e.topic_id, t.titre, e.type_exercice, e.question, e.question_image_url, e.question_audio_url,
		e.options_images, e.options_text, e.correct_index,
		e.feedback_success_text, e.feedback_success_audio_url, e.feedback_fail_text, e.feedback_fail_audio_url,
		e.difficulte, e.points_recompense, e.genere_par_ia
	FROM exercices e
	JOIN topics t ON t.id = e.topic_id
`

func scanExercise(row rowScanner) (*models.Exercise, error) {
	e := &models.Exercise{}
	var optionsImages, optionsText string
	err := row.Scan(
		&e.ID,
		&e.TopicID,
		&e.TopicTitre,
		&e.TypeExercice,
		&e.Question,
		&e.QuestionImageURL,
		&e.QuestionAudioURL,
		&optionsImages,
		&optionsText,
		&e.CorrectIndex,
		&e.FeedbackSuccessText,
		&e.FeedbackSuccessAudioURL,
		&e.FeedbackFailText,
		&e.FeedbackFailAudioURL,
		&e.Difficulte,
		&e.PointsRecompense,
		&e.GenereParIA,
	)
	if err != nil {
		return nil, err
	}
	e.OptionsImages = decodeList(optionsImages)
	e.OptionsText = decodeList(optionsText)
	return e, nil
}

func (r *ExerciseRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Exercise, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exercises: %w", err)
	}
	defer rows.Close()

	var exercises []models.Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exercise: %w", err)
		}
		exercises = append(exercises, *e)
	}
	return exercises, rows.Err()
}

// GetByID retrieves an exercise with its topic title
func (r *ExerciseRepository) GetByID(ctx context.Context, id int64) (*models.Exercise, error) {
	e, err := scanExercise(r.db.QueryRowContext(ctx, exerciseSelect+" WHERE e.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exercise: %w", err)
	}
	return e, nil
}

// ListByTopic returns a topic's exercises by difficulty, or every exercise
// when topicID is zero
func (r *ExerciseRepository) ListByTopic(ctx context.Context, topicID int64) ([]models.Exercise, error) {
	if topicID == 0 {
		return r.list(ctx, exerciseSelect+" ORDER BY e.topic_id, e.difficulte, e.id")
	}
	return r.list(ctx, exerciseSelect+" WHERE e.topic_id = ? ORDER BY e.difficulte, e.id", topicID)
}

// ListIDs returns the IDs of a topic's exercises, skipping the excluded ones
func (r *ExerciseRepository) ListIDs(ctx context.Context, topicID int64, exclude []int64) ([]int64, error) {
	clause, excludeArgs := notInClause("id", exclude)
	query := "SELECT id FROM exercices WHERE topic_id = ?" + clause + " ORDER BY id"
	args := append([]interface{}{topicID}, excludeArgs...)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exercise ids: %w", err)
	}
	ids, err := scanIDs(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan exercise ids: %w", err)
	}
	return ids, nil
}

// CountByTopic counts a topic's exercises, skipping the excluded ones
func (r *ExerciseRepository) CountByTopic(ctx context.Context, topicID int64, exclude []int64) (int, error) {
	clause, excludeArgs := notInClause("id", exclude)
	args := append([]interface{}{topicID}, excludeArgs...)

	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM exercices WHERE topic_id = ?"+clause, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count exercises: %w", err)
	}
	return count, nil
}

// GetByIDs loads exercises and returns them in the order of ids.
// Unknown IDs are skipped.
func (r *ExerciseRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Exercise, error) {
	if len(ids) == 0 {
		return []models.Exercise{}, nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	found, err := r.list(ctx, exerciseSelect+" WHERE e.id IN ("+database.Placeholders(len(ids))+")", args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]models.Exercise, len(found))
	for _, e := range found {
		byID[e.ID] = e
	}
	ordered := make([]models.Exercise, 0, len(found))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered, nil
}

// Create inserts an exercise and sets its ID. Empty feedback texts and a
// zero reward fall back to the defaults.
func (r *ExerciseRepository) Create(ctx context.Context, e *models.Exercise) error {
	if e.TypeExercice == "" {
		e.TypeExercice = models.ExerciseMultipleChoice
	}
	if e.FeedbackSuccessText == "" {
		e.FeedbackSuccessText = models.DefaultFeedbackSuccess
	}
	if e.FeedbackFailText == "" {
		e.FeedbackFailText = models.DefaultFeedbackFail
	}
	if e.PointsRecompense == 0 {
		e.PointsRecompense = models.DefaultRewardPoints
	}
	if e.Difficulte == 0 {
		e.Difficulte = 1
	}

	query := `
		INSERT INTO exercices (topic_id, type_exercice, question, question_image_url, question_audio_url,
			options_images, options_text, correct_index,
			feedback_success_text, feedback_success_audio_url, feedback_fail_text, feedback_fail_audio_url,
			difficulte, points_recompense, genere_par_ia)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		e.TopicID,
		e.TypeExercice,
		e.Question,
		e.QuestionImageURL,
		e.QuestionAudioURL,
		encodeList(e.OptionsImages),
		encodeList(e.OptionsText),
		e.CorrectIndex,
		e.FeedbackSuccessText,
		e.FeedbackSuccessAudioURL,
		e.FeedbackFailText,
		e.FeedbackFailAudioURL,
		e.Difficulte,
		e.PointsRecompense,
		e.GenereParIA,
	)
	if err != nil {
		return fmt.Errorf("failed to create exercise: %w", err)
	}
	e.ID = id
	return nil
}

// SaveAudio stores the question and feedback narration URLs of e.
func (r *ExerciseRepository) SaveAudio(ctx context.Context, e *models.Exercise) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE exercices
		SET question_audio_url = ?, feedback_success_audio_url = ?, feedback_fail_audio_url = ?
		WHERE id = ?`,
		e.QuestionAudioURL, e.FeedbackSuccessAudioURL, e.FeedbackFailAudioURL, e.ID)
	if err != nil {
		return fmt.Errorf("failed to save exercise audio: %w", err)
	}
	return nil
}
