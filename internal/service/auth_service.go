package service

import (
	"context"
	"strings"
	"time"

	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/curriculum"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
	"github.com/CheickOuedraogo/tuteur-backend/internal/repository"
	"github.com/CheickOuedraogo/tuteur-backend/internal/security"
	"github.com/CheickOuedraogo/tuteur-backend/internal/validation"
)

const (
	msgEmailTaken         = "Cet email est déjà utilisé."
	msgUsernameTaken      = "Ce nom d'utilisateur est déjà pris."
	msgInvalidCredentials = "Identifiants invalides."
)

// WelcomeMailer sends the welcome e-mail after signup.
type WelcomeMailer interface {
	SendWelcomeEmail(ctx context.Context, toEmail, toName, classe string) error
}

// SignupRequest carries the fields of a new learner account.
type SignupRequest struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
	Classe    string
}

// AuthResult is a signed-in learner.
type AuthResult struct {
	Token   string
	User    *models.User
	Profile *models.Profile
}

// AuthService handles authentication business logic
type AuthService struct {
	db       *database.DB
	users    *repository.UserRepository
	profiles *repository.ProfileRepository
	tokens   *security.TokenManager
	mailer   WelcomeMailer
	log      *logger.Logger
}

// NewAuthService creates a new auth service. mailer may be nil.
func NewAuthService(db *database.DB, tokens *security.TokenManager, mailer WelcomeMailer, log *logger.Logger) *AuthService {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthService{
		db:       db,
		users:    repository.NewUserRepository(db),
		profiles: repository.NewProfileRepository(db),
		tokens:   tokens,
		mailer:   mailer,
		log:      log,
	}
}

// Signup creates an active account with its learner profile and signs it in.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.Classe = curriculum.NormalizeGrade(req.Classe)

	if err := validation.ValidateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidateGrade(req.Classe); err != nil {
		return nil, err
	}

	if existing, err := s.users.GetByUsername(ctx, req.Username); err != nil {
		return nil, apperr.Internal(err)
	} else if existing != nil {
		return nil, apperr.ValidationField("username", msgUsernameTaken)
	}
	if existing, err := s.users.GetByEmail(ctx, req.Email); err != nil {
		return nil, apperr.Internal(err)
	} else if existing != nil {
		return nil, apperr.ValidationField("email", msgEmailTaken)
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		IsActive:     true,
	}
	profile := &models.Profile{Classe: req.Classe}
	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := s.users.WithTx(tx).Create(ctx, user); err != nil {
			return err
		}
		profile.UserID = user.ID
		return s.profiles.WithTx(tx).Create(ctx, profile)
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	profile.User = user

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendWelcomeEmail(ctx, user.Email, user.DisplayName(), profile.Classe); err != nil {
			s.log.Warn("failed to send welcome email", "user", user.Username, "error", err)
		}
	}

	s.log.Info("learner registered", "user", user.Username, "classe", profile.Classe)
	return &AuthResult{Token: token, User: user, Profile: profile}, nil
}

// Login authenticates by username or e-mail address. Guest and deactivated
// accounts cannot log in.
func (s *AuthService) Login(ctx context.Context, login, password string) (*AuthResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, apperr.Validation(msgInvalidCredentials)
	}

	user, err := s.users.GetByUsername(ctx, login)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil && strings.Contains(login, "@") {
		if user, err = s.users.GetByEmail(ctx, login); err != nil {
			return nil, apperr.Internal(err)
		}
	}
	if user == nil || !user.IsActive || user.IsGuest || !security.CheckPassword(user.PasswordHash, password) {
		s.log.Warn("login failed", "login", login)
		return nil, apperr.Validation(msgInvalidCredentials)
	}

	profile, err := s.profiles.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("failed to record login", "user", user.Username, "error", err)
	}
	user.LastLogin = &now

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &AuthResult{Token: token, User: user, Profile: profile}, nil
}

// Authenticate resolves a bearer token to its active account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "", err)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil || !user.IsActive {
		return nil, apperr.Unauthorized()
	}
	return user, nil
}
