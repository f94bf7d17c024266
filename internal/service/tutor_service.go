package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/CheickOuedraogo/tuteur-backend/internal/ai"
	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/curriculum"
	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
	"github.com/CheickOuedraogo/tuteur-backend/internal/security"
)

const (
	msgMessageRequired = "Message requis"
	msgChatGradeDenied = "Le Tuteur Intelligent est disponible à partir du CE1."
	msgChatEmptyReply  = "Erreur lors de la communication avec l'IA."
)

// ChatRequest is one learner message to the tutor with the recent conversation.
type ChatRequest struct {
	Message string
	History []ai.ChatTurn
}

// TutorService runs the Sandy tutoring chat.
type TutorService struct {
	guests   *GuestService
	gateway  *ai.Gateway
	limiter  security.Limiter
	aiPolicy curriculum.AIPolicy
	log      *logger.Logger
}

// NewTutorService creates a tutor service. A nil limiter disables rate limiting.
func NewTutorService(guests *GuestService, gateway *ai.Gateway, limiter security.Limiter, policy curriculum.AIPolicy, log *logger.Logger) *TutorService {
	if log == nil {
		log = logger.Nop()
	}
	return &TutorService{guests: guests, gateway: gateway, limiter: limiter, aiPolicy: policy, log: log}
}

// Chat answers a learner message. Only authenticated learners in grades
// using AI may chat.
func (s *TutorService) Chat(ctx context.Context, id Identity, req ChatRequest) (string, error) {
	if !id.Authenticated() {
		return "", apperr.Unauthorized()
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return "", apperr.ValidationField("message", msgMessageRequired)
	}

	profile, err := s.guests.FindProfile(ctx, id)
	if err != nil {
		return "", apperr.Internal(err)
	}
	if profile == nil {
		return "", apperr.ProfileNotFound()
	}
	if !s.aiPolicy.UsesAI(profile.Classe) {
		return "", apperr.ClassNotAllowed(msgChatGradeDenied)
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, fmt.Sprintf("chat:%d", id.UserID))
		if err != nil {
			s.log.Warn("chat rate limiter unavailable", "user", id.Username, "error", err)
		} else if !allowed {
			return "", apperr.New(apperr.KindRateLimited, "")
		}
	}

	username := id.Username
	if profile.User != nil {
		username = profile.User.Username
	}
	tutorCtx := ai.TutorContext(ai.ChatLearner{
		Username:  username,
		Classe:    profile.Classe,
		Points:    profile.Points,
		Secondary: !curriculum.IsPrimary(profile.Classe),
	}, req.History)

	s.log.Info("tutor chat", "user", username, "classe", profile.Classe)
	reply, err := s.gateway.Generate(ai.WithPurpose(ctx, "chat"), ai.Call{
		Prompt:  message,
		Classe:  profile.Classe,
		Context: tutorCtx,
	})
	if err != nil {
		return "", err
	}
	if reply == "" {
		return "", apperr.New(apperr.KindInternal, msgChatEmptyReply)
	}
	return reply, nil
}
