package repository

import (
	"context"
	"fmt"

	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
)

// MediaRepository answers questions about the media files rows point to.
type MediaRepository struct {
	db database.DBTX
}

func NewMediaRepository(db database.DBTX) *MediaRepository {
	return &MediaRepository{db: db}
}

// AudioURLs returns every distinct narration URL referenced by subjects,
// topics and exercises.
func (r *MediaRepository) AudioURLs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT audio_intro_url FROM matieres WHERE audio_intro_url IS NOT NULL AND audio_intro_url <> ''
		UNION SELECT audio_url FROM topics WHERE audio_url IS NOT NULL AND audio_url <> ''
		UNION SELECT question_audio_url FROM exercices WHERE question_audio_url IS NOT NULL AND question_audio_url <> ''
		UNION SELECT feedback_success_audio_url FROM exercices WHERE feedback_success_audio_url IS NOT NULL AND feedback_success_audio_url <> ''
		UNION SELECT feedback_fail_audio_url FROM exercices WHERE feedback_fail_audio_url IS NOT NULL AND feedback_fail_audio_url <> ''`)
	if err != nil {
		return nil, fmt.Errorf("failed to query audio urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan audio url: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}
