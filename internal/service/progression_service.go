package service

import (
	"context"

	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
	"github.com/CheickOuedraogo/tuteur-backend/internal/repository"
)

// ProgressionService exposes a learner's per-topic progress.
type ProgressionService struct {
	progressions *repository.ProgressionRepository
	guests       *GuestService
}

func NewProgressionService(db *database.DB, guests *GuestService) *ProgressionService {
	return &ProgressionService{
		progressions: repository.NewProgressionRepository(db),
		guests:       guests,
	}
}

// List returns the caller's progressions, most recent activity first.
func (s *ProgressionService) List(ctx context.Context, id Identity) ([]models.Progression, error) {
	if !id.Authenticated() {
		return nil, apperr.Unauthorized()
	}
	profile, err := s.guests.FindProfile(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if profile == nil {
		return nil, apperr.ProfileNotFound()
	}
	list, err := s.progressions.ListByProfile(ctx, profile.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if list == nil {
		list = []models.Progression{}
	}
	return list, nil
}
