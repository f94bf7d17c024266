package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
)

// TopicRepository handles database operations for topics
type TopicRepository struct {
	db database.DBTX
}

// NewTopicRepository creates a new topic repository
func NewTopicRepository(db database.DBTX) *TopicRepository {
	return &TopicRepository{db: db}
}

// TopicFilter narrows topic listings. Zero values do not filter.
type TopicFilter struct {
	Classe    string
	MatiereID int64
	Limit     int
}

const topicSelect = `
	SELECT t.id, t.matiere_id, m.nom, t.classe, t.titre, t.resume, t.contenu_cours, t.image_url, t.audio_url, t.ordre
	FROM topics t
	JOIN matieres m ON m.id = t.matiere_id
`

func scanTopic(row rowScanner) (*models.Topic, error) {
	t := &models.Topic{}
	err := row.Scan(
		&t.ID,
		&t.MatiereID,
		&t.MatiereCode,
		&t.Classe,
		&t.Titre,
		&t.Resume,
		&t.ContenuCours,
		&t.ImageURL,
		&t.AudioURL,
		&t.Ordre,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetByID retrieves a topic with its subject code
func (r *TopicRepository) GetByID(ctx context.Context, id int64) (*models.Topic, error) {
	t, err := scanTopic(r.db.QueryRowContext(ctx, topicSelect+" WHERE t.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get topic: %w", err)
	}
	return t, nil
}

// List returns topics matching filter ordered by display order
func (r *TopicRepository) List(ctx context.Context, filter TopicFilter) ([]models.Topic, error) {
	query := topicSelect + " WHERE 1 = 1"
	var args []interface{}
	if filter.Classe != "" {
		query += " AND t.classe = ?"
		args = append(args, filter.Classe)
	}
	if filter.MatiereID != 0 {
		query += " AND t.matiere_id = ?"
		args = append(args, filter.MatiereID)
	}
	query += " ORDER BY t.ordre, t.id"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, *t)
	}
	return topics, rows.Err()
}

// Create inserts a topic and sets its ID
func (r *TopicRepository) Create(ctx context.Context, t *models.Topic) error {
	query := `
		INSERT INTO topics (matiere_id, classe, titre, resume, contenu_cours, image_url, audio_url, ordre)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		t.MatiereID, t.Classe, t.Titre, t.Resume, t.ContenuCours, t.ImageURL, t.AudioURL, t.Ordre)
	if err != nil {
		return fmt.Errorf("failed to create topic: %w", err)
	}
	t.ID = id
	return nil
}

// ExistsByTitle reports whether a subject already has a topic with this title in grade
func (r *TopicRepository) ExistsByTitle(ctx context.Context, matiereID int64, classe, titre string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM topics WHERE matiere_id = ? AND classe = ? AND titre = ?", matiereID, classe, titre).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check topic: %w", err)
	}
	return count > 0, nil
}

// SaveLesson caches generated lesson content and its narration URL.
// An empty audioURL keeps the current one.
func (r *TopicRepository) SaveLesson(ctx context.Context, id int64, contenu, audioURL string) error {
	var err error
	if audioURL == "" {
		_, err = r.db.ExecContext(ctx, "UPDATE topics SET contenu_cours = ? WHERE id = ?", contenu, id)
	} else {
		_, err = r.db.ExecContext(ctx, "UPDATE topics SET contenu_cours = ?, audio_url = ? WHERE id = ?", contenu, audioURL, id)
	}
	if err != nil {
		return fmt.Errorf("failed to save lesson: %w", err)
	}
	return nil
}

// SetAudioURL records the narration of a topic.
func (r *TopicRepository) SetAudioURL(ctx context.Context, id int64, audioURL string) error {
	if _, err := r.db.ExecContext(ctx, "UPDATE topics SET audio_url = ? WHERE id = ?", audioURL, id); err != nil {
		return fmt.Errorf("failed to set topic audio: %w", err)
	}
	return nil
}
