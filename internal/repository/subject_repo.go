package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
)

// SubjectRepository handles database operations for subjects (matières)
type SubjectRepository struct {
	db database.DBTX
}

// NewSubjectRepository creates a new subject repository
func NewSubjectRepository(db database.DBTX) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectColumns = "m.id, m.nom, m.description, m.image_url, m.audio_intro_url, m.ordre"

func scanSubject(row rowScanner) (*models.Subject, error) {
	s := &models.Subject{}
	if err := row.Scan(&s.ID, &s.Nom, &s.Description, &s.ImageURL, &s.AudioIntroURL, &s.Ordre); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SubjectRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Subject, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query subjects: %w", err)
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, *s)
	}
	return subjects, rows.Err()
}

// List returns every subject ordered by display order
func (r *SubjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	return r.list(ctx, "SELECT "+subjectColumns+" FROM matieres m ORDER BY m.ordre, m.id")
}

// ListWithTopicsForGrade returns the subjects that have at least one topic in grade
func (r *SubjectRepository) ListWithTopicsForGrade(ctx context.Context, grade string) ([]models.Subject, error) {
	query := `
		SELECT ` + subjectColumns + `
		FROM matieres m
		WHERE EXISTS (SELECT 1 FROM topics t WHERE t.matiere_id = m.id AND t.classe = ?)
		ORDER BY m.ordre, m.id
	`
	return r.list(ctx, query, grade)
}

// GetByID retrieves a subject by ID
func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*models.Subject, error) {
	s, err := scanSubject(r.db.QueryRowContext(ctx, "SELECT "+subjectColumns+" FROM matieres m WHERE m.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return s, nil
}

// GetByCode retrieves a subject by its code
func (r *SubjectRepository) GetByCode(ctx context.Context, code string) (*models.Subject, error) {
	s, err := scanSubject(r.db.QueryRowContext(ctx, "SELECT "+subjectColumns+" FROM matieres m WHERE m.nom = ?", code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return s, nil
}
