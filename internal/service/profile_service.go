package service

import (
	"context"
	"strings"

	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/curriculum"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
	"github.com/CheickOuedraogo/tuteur-backend/internal/repository"
	"github.com/CheickOuedraogo/tuteur-backend/internal/validation"
)

// ProfileService lets learners read and edit their own profile.
type ProfileService struct {
	db       *database.DB
	users    *repository.UserRepository
	profiles *repository.ProfileRepository
	log      *logger.Logger
}

func NewProfileService(db *database.DB, log *logger.Logger) *ProfileService {
	if log == nil {
		log = logger.Nop()
	}
	return &ProfileService{
		db:       db,
		users:    repository.NewUserRepository(db),
		profiles: repository.NewProfileRepository(db),
		log:      log,
	}
}

// Mine returns the authenticated caller's profile with its account.
func (s *ProfileService) Mine(ctx context.Context, id Identity) (*models.Profile, error) {
	if !id.Authenticated() {
		return nil, apperr.Unauthorized()
	}
	profile, err := s.profiles.GetByUserID(ctx, id.UserID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if profile == nil {
		return nil, apperr.ProfileNotFound()
	}
	return profile, nil
}

// Update applies a partial update to the caller's profile and account.
func (s *ProfileService) Update(ctx context.Context, id Identity, upd models.ProfileUpdate) (*models.Profile, error) {
	profile, err := s.Mine(ctx, id)
	if err != nil {
		return nil, err
	}
	user := profile.User
	if user == nil {
		if user, err = s.users.GetByID(ctx, id.UserID); err != nil || user == nil {
			return nil, apperr.Internal(err)
		}
	}

	if upd.Classe != nil {
		classe := curriculum.NormalizeGrade(*upd.Classe)
		if err := validation.ValidateGrade(classe); err != nil {
			return nil, err
		}
		profile.Classe = classe
	}
	if upd.PhotoProfil != nil {
		photo := strings.TrimSpace(*upd.PhotoProfil)
		if photo == "" {
			profile.PhotoProfil = nil
		} else {
			profile.PhotoProfil = &photo
		}
	}

	firstName, lastName, email := user.FirstName, user.LastName, user.Email
	if upd.FirstName != nil {
		firstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		lastName = strings.TrimSpace(*upd.LastName)
	}
	if upd.Email != nil {
		email = strings.TrimSpace(*upd.Email)
		if email != user.Email {
			if err := validation.ValidateEmail(email); err != nil {
				return nil, err
			}
			other, err := s.users.GetByEmail(ctx, email)
			if err != nil {
				return nil, apperr.Internal(err)
			}
			if other != nil && other.ID != user.ID {
				return nil, apperr.ValidationField("email", msgEmailTaken)
			}
		}
	}

	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := s.users.WithTx(tx).UpdateIdentity(ctx, user.ID, firstName, lastName, email); err != nil {
			return err
		}
		return s.profiles.WithTx(tx).Update(ctx, profile)
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Info("profile updated", "user", user.Username)
	return s.Mine(ctx, id)
}
