package service

import (
	"context"
	"fmt"
	"time"

	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
	"github.com/CheickOuedraogo/tuteur-backend/internal/repository"
	"github.com/CheickOuedraogo/tuteur-backend/internal/validation"
)

// GuestUsernamePrefix prefixes the shadow accounts created for anonymous
// visitors. Signup refuses it.
const GuestUsernamePrefix = validation.GuestUsernamePrefix

// ErrGuestNameTaken is returned when a session key maps to a guest name held
// by a registered account. The visitor must sign in or start a new session.
var ErrGuestNameTaken = apperr.New(apperr.KindUnauthorized, "Session invitée invalide. Connectez-vous ou rechargez la page.")

// Identity is the caller of a learner operation: an authenticated account,
// or an anonymous visitor identified by a session key.
type Identity struct {
	UserID     int64
	Username   string
	SessionKey string
}

// Authenticated reports whether the caller is a logged-in account.
func (i Identity) Authenticated() bool {
	return i.UserID != 0
}

// GuestUsername derives the shadow account name from a session key.
func GuestUsername(sessionKey string) string {
	if len(sessionKey) > 8 {
		sessionKey = sessionKey[:8]
	}
	return GuestUsernamePrefix + sessionKey
}

// GuestService resolves callers to learner profiles, creating bounded-lifetime
// shadow profiles for anonymous visitors.
type GuestService struct {
	db       *database.DB
	users    *repository.UserRepository
	profiles *repository.ProfileRepository
	ttl      time.Duration
	now      func() time.Time
	log      *logger.Logger
}

// NewGuestService creates a guest service whose shadow accounts live for ttl
// after their last use.
func NewGuestService(db *database.DB, ttl time.Duration, log *logger.Logger) *GuestService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if log == nil {
		log = logger.Nop()
	}
	return &GuestService{
		db:       db,
		users:    repository.NewUserRepository(db),
		profiles: repository.NewProfileRepository(db),
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}
}

// FindProfile returns the caller's profile without creating anything.
// It returns nil when the caller has none yet.
func (s *GuestService) FindProfile(ctx context.Context, id Identity) (*models.Profile, error) {
	if id.Authenticated() {
		return s.profiles.GetByUserID(ctx, id.UserID)
	}
	if id.SessionKey == "" {
		return nil, nil
	}
	user, err := s.users.GetByUsername(ctx, GuestUsername(id.SessionKey))
	if err != nil || user == nil {
		return nil, err
	}
	if !user.IsGuest {
		s.log.Warn("guest session collides with a registered account", "username", user.Username)
		return nil, nil
	}
	return s.profiles.GetByUserID(ctx, user.ID)
}

// ResolveProfile returns the caller's profile, creating it in grade classe
// when missing. Guest accounts have their lifetime extended on every use.
func (s *GuestService) ResolveProfile(ctx context.Context, id Identity, classe string) (*models.Profile, error) {
	if id.Authenticated() {
		return s.ensureProfile(ctx, id.UserID, classe)
	}
	if id.SessionKey == "" {
		return nil, fmt.Errorf("anonymous caller without session key")
	}

	username := GuestUsername(id.SessionKey)
	expiresAt := s.now().Add(s.ttl)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.createGuest(ctx, username, classe, expiresAt)
		if err != nil {
			return nil, err
		}
	} else if !user.IsGuest {
		s.log.Warn("guest session collides with a registered account", "username", username)
		return nil, ErrGuestNameTaken
	} else if err := s.users.ExtendGuest(ctx, user.ID, expiresAt); err != nil {
		return nil, err
	}
	return s.ensureProfile(ctx, user.ID, classe)
}

func (s *GuestService) createGuest(ctx context.Context, username, classe string, expiresAt time.Time) (*models.User, error) {
	user := &models.User{
		Username:  username,
		IsActive:  false,
		IsGuest:   true,
		ExpiresAt: &expiresAt,
	}
	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		return s.profiles.WithTx(tx).Create(ctx, &models.Profile{UserID: user.ID, Classe: classe})
	})
	if err == nil {
		s.log.Info("guest profile created", "username", username, "classe", classe)
		return user, nil
	}

	// A concurrent request for the same session may have won the insert.
	existing, getErr := s.users.GetByUsername(ctx, username)
	if getErr == nil && existing != nil {
		if !existing.IsGuest {
			return nil, ErrGuestNameTaken
		}
		return existing, nil
	}
	return nil, fmt.Errorf("failed to create guest: %w", err)
}

func (s *GuestService) ensureProfile(ctx context.Context, userID int64, classe string) (*models.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil || profile != nil {
		return profile, err
	}
	if err := s.profiles.Create(ctx, &models.Profile{UserID: userID, Classe: classe}); err != nil {
		existing, getErr := s.profiles.GetByUserID(ctx, userID)
		if getErr == nil && existing != nil {
			return existing, nil
		}
		return nil, err
	}
	return s.profiles.GetByUserID(ctx, userID)
}

// CleanupExpired deletes guest accounts past their lifetime along with
// their profiles, submissions and progressions.
func (s *GuestService) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.users.DeleteExpiredGuests(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("expired guests removed", "count", n)
	}
	return n, nil
}
