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

// ProfileRepository handles database operations for learner profiles
type ProfileRepository struct {
	db database.DBTX
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db database.DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// WithTx returns a copy of the repository bound to tx
func (r *ProfileRepository) WithTx(tx *database.Tx) *ProfileRepository {
	return &ProfileRepository{db: tx}
}

const profileSelect = `
	SELECT p.id, p.user_id, p.classe, p.photo_profil, p.points, p.badges, p.date_creation, p.date_modification,
		u.id, u.username, COALESCE(u.email, ''), u.first_name, u.last_name, u.is_active, u.is_guest, u.expires_at, u.created_at
	FROM profils p
	JOIN users u ON u.id = p.user_id
`

func scanProfile(row rowScanner) (*models.Profile, error) {
	p := &models.Profile{User: &models.User{}}
	var badges string
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Classe,
		&p.PhotoProfil,
		&p.Points,
		&badges,
		&p.DateCreation,
		&p.DateModification,
		&p.User.ID,
		&p.User.Username,
		&p.User.Email,
		&p.User.FirstName,
		&p.User.LastName,
		&p.User.IsActive,
		&p.User.IsGuest,
		&p.User.ExpiresAt,
		&p.User.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Badges = decodeList(badges)
	return p, nil
}

// Create inserts a profile for an existing account and sets its ID
func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	now := time.Now().UTC()
	if p.DateCreation.IsZero() {
		p.DateCreation = now
	}
	p.DateModification = now
	if p.Badges == nil {
		p.Badges = []string{}
	}

	query := `
		INSERT INTO profils (user_id, classe, photo_profil, points, badges, date_creation, date_modification)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query,
		p.UserID, p.Classe, p.PhotoProfil, p.Points, encodeList(p.Badges), p.DateCreation, p.DateModification)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	p.ID = id
	return nil
}

// GetByUserID retrieves the profile owned by an account
func (r *ProfileRepository) GetByUserID(ctx context.Context, userID int64) (*models.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, profileSelect+" WHERE p.user_id = ?", userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// GetByID retrieves a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id int64) (*models.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, profileSelect+" WHERE p.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// Update saves the grade, photo and badges of a profile
func (r *ProfileRepository) Update(ctx context.Context, p *models.Profile) error {
	p.DateModification = time.Now().UTC()
	query := "UPDATE profils SET classe = ?, photo_profil = ?, badges = ?, date_modification = ? WHERE id = ?"
	_, err := r.db.ExecContext(ctx, query, p.Classe, p.PhotoProfil, encodeList(p.Badges), p.DateModification, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// AddPoints increments the profile's points in place and returns the new total
func (r *ProfileRepository) AddPoints(ctx context.Context, id int64, delta int) (int, error) {
	_, err := r.db.ExecContext(ctx,
		"UPDATE profils SET points = points + ?, date_modification = ? WHERE id = ?", delta, time.Now().UTC(), id)
	if err != nil {
		return 0, fmt.Errorf("failed to add points: %w", err)
	}
	return r.Points(ctx, id)
}

// Points reads a profile's current point total.
func (r *ProfileRepository) Points(ctx context.Context, id int64) (int, error) {
	var points int
	if err := r.db.QueryRowContext(ctx, "SELECT points FROM profils WHERE id = ?", id).Scan(&points); err != nil {
		return 0, fmt.Errorf("failed to read points: %w", err)
	}
	return points, nil
}

// List returns every profile, optionally excluding guests
func (r *ProfileRepository) List(ctx context.Context, includeGuests bool) ([]models.Profile, error) {
	query := profileSelect
	var args []interface{}
	if !includeGuests {
		query += " WHERE u.is_guest = ?"
		args = append(args, false)
	}
	query += " ORDER BY p.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}
