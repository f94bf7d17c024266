package service

import (
	"context"

	"github.com/CheickOuedraogo/tuteur-backend/internal/ai"
	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/audio"
	"github.com/CheickOuedraogo/tuteur-backend/internal/curriculum"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
	"github.com/CheickOuedraogo/tuteur-backend/internal/repository"
)

// Lesson is the explanation of a topic served to a learner.
type Lesson struct {
	TopicID     int64
	Titre       string
	Explication string
	AudioURL    *string
	ImageURL    *string
	UtiliseIA   bool
}

// LessonService resolves topic lessons, generating and caching them for
// grades that use AI content.
type LessonService struct {
	topics   *repository.TopicRepository
	guests   *GuestService
	gateway  *ai.Gateway
	audio    *audio.Service
	aiPolicy curriculum.AIPolicy
	log      *logger.Logger
}

// NewLessonService creates a lesson service.
func NewLessonService(db *database.DB, guests *GuestService, gateway *ai.Gateway, narrator *audio.Service, policy curriculum.AIPolicy, log *logger.Logger) *LessonService {
	if log == nil {
		log = logger.Nop()
	}
	return &LessonService{
		topics:   repository.NewTopicRepository(db),
		guests:   guests,
		gateway:  gateway,
		audio:    narrator,
		aiPolicy: policy,
		log:      log,
	}
}

// Explain returns the lesson of a topic. The effective grade is the caller's
// profile grade when one exists, otherwise the topic's.
func (s *LessonService) Explain(ctx context.Context, id Identity, topicID int64) (*Lesson, error) {
	topic, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if topic == nil {
		return nil, apperr.NotFound("Topic non trouvé.")
	}

	classe := topic.Classe
	if id.Authenticated() {
		profile, err := s.guests.FindProfile(ctx, id)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if profile != nil {
			classe = profile.Classe
		}
	}

	usesAI := s.aiPolicy.UsesAI(classe)
	lesson := &Lesson{
		TopicID:   topic.ID,
		Titre:     topic.Titre,
		ImageURL:  topic.ImageURL,
		UtiliseIA: usesAI,
	}
	lesson.Explication, lesson.AudioURL = s.content(ctx, topic, classe, usesAI)

	s.log.Info("lesson served", "topic_id", topic.ID, "classe", classe, "ia", usesAI)
	return lesson, nil
}

func (s *LessonService) content(ctx context.Context, topic *models.Topic, classe string, usesAI bool) (string, *string) {
	if topic.HasLesson() {
		return *topic.ContenuCours, topic.AudioURL
	}
	if !usesAI {
		return topic.Resume, topic.AudioURL
	}

	ctx = ai.WithPurpose(ctx, "lesson")
	prompt := ai.LessonPrompt(curriculum.SubjectLabel(topic.MatiereCode), topic.Titre, topic.Resume, classe)
	text, err := s.gateway.Generate(ctx, ai.Call{Prompt: prompt, Classe: classe})
	if err != nil || text == "" {
		// Nothing is cached so a later request can still generate the lesson.
		s.log.Warn("lesson generation failed, serving summary", "topic_id", topic.ID, "error", err)
		return topic.Resume, topic.AudioURL
	}

	audioURL := topic.AudioURL
	if url := s.audio.Generate(ctx, text); url != "" {
		audioURL = &url
	}
	stored := ""
	if audioURL != nil {
		stored = *audioURL
	}
	if err := s.topics.SaveLesson(ctx, topic.ID, text, stored); err != nil {
		s.log.Error("failed to cache lesson", "topic_id", topic.ID, "error", err)
	} else {
		s.log.Info("lesson generated and cached", "topic_id", topic.ID)
	}
	return text, audioURL
}
