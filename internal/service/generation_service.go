package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/CheickOuedraogo/tuteur-backend/internal/ai"
	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/curriculum"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
	"github.com/CheickOuedraogo/tuteur-backend/internal/repository"
)

const (
	DefaultGeneratedExercises = 5
	MaxGeneratedExercises     = 10

	essentialsMaxTokens = 4000
)

// generatedExercise is the JSON shape the model is asked to produce.
type generatedExercise struct {
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	CorrectIndex    int      `json:"correct_index"`
	FeedbackSuccess string   `json:"feedback_success"`
	FeedbackFail    string   `json:"feedback_fail"`
	Difficulte      int      `json:"difficulte"`
	TopicID         int64    `json:"topic_id"`
}

type generatedTopic struct {
	Titre  string `json:"titre"`
	Resume string `json:"resume"`
	Ordre  int    `json:"ordre"`
}

// GenerationService creates curriculum content with the language model.
type GenerationService struct {
	subjects  *repository.SubjectRepository
	topics    *repository.TopicRepository
	exercises *repository.ExerciseRepository
	guests    *GuestService
	gateway   *ai.Gateway
	aiPolicy  curriculum.AIPolicy
	log       *logger.Logger
}

func NewGenerationService(db *database.DB, guests *GuestService, gateway *ai.Gateway, policy curriculum.AIPolicy, log *logger.Logger) *GenerationService {
	if log == nil {
		log = logger.Nop()
	}
	return &GenerationService{
		subjects:  repository.NewSubjectRepository(db),
		topics:    repository.NewTopicRepository(db),
		exercises: repository.NewExerciseRepository(db),
		guests:    guests,
		gateway:   gateway,
		aiPolicy:  policy,
		log:       log,
	}
}

// GenerateForLearner creates count exercises for a topic on behalf of an
// authenticated learner whose grade uses AI content.
func (s *GenerationService) GenerateForLearner(ctx context.Context, id Identity, topicID int64, count int) ([]models.Exercise, error) {
	if !id.Authenticated() {
		return nil, apperr.Unauthorized()
	}
	if count == 0 {
		count = DefaultGeneratedExercises
	}
	if count < 1 || count > MaxGeneratedExercises {
		return nil, apperr.ValidationField("count", "Le nombre d'exercices doit être compris entre 1 et 10.")
	}

	profile, err := s.guests.FindProfile(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if profile == nil {
		return nil, apperr.ProfileNotFound()
	}
	if !s.aiPolicy.UsesAI(profile.Classe) {
		return nil, apperr.ClassNotAllowed("La génération d'exercices est disponible à partir du CE1.")
	}

	topic, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if topic == nil {
		return nil, apperr.NotFound("Topic non trouvé.")
	}
	return s.GenerateExercises(ctx, topic, profile.Classe, count)
}

// GenerateExercises asks the model for count exercises on topic and stores
// the valid ones. Model failures surface as AI errors; an unusable reply
// yields no exercises.
func (s *GenerationService) GenerateExercises(ctx context.Context, topic *models.Topic, classe string, count int) ([]models.Exercise, error) {
	if classe == "" {
		classe = topic.Classe
	}
	matiere := curriculum.SubjectLabel(topic.MatiereCode)

	var prompt string
	if count == 1 {
		prompt = ai.ExercisePrompt(matiere, topic.Titre, classe, 1)
	} else {
		prompt = ai.ExerciseBatchPrompt(matiere, topic.Titre, topic.Resume, classe, count)
	}

	ctx = ai.WithPurpose(ctx, "exercises")
	reply, err := s.gateway.Generate(ctx, ai.Call{Prompt: prompt, Classe: classe})
	if err != nil {
		return nil, err
	}
	items, err := ai.ExtractJSONList(reply)
	if err != nil {
		s.log.Warn("exercise generation returned no JSON", "topic_id", topic.ID, "error", err)
		return []models.Exercise{}, nil
	}

	created := make([]models.Exercise, 0, len(items))
	for _, raw := range items {
		if len(created) == count {
			break
		}
		gen, ok := s.parseExercise(raw)
		if !ok {
			continue
		}
		e := gen.toModel(topic.ID)
		if err := s.exercises.Create(ctx, e); err != nil {
			return created, apperr.Internal(err)
		}
		e.TopicTitre = topic.Titre
		created = append(created, *e)
	}

	s.log.Info("exercises generated", "topic_id", topic.ID, "requested", count, "created", len(created))
	return created, nil
}

// GenerateEssentials creates the must-know questions of a subject for a
// grade, attaching each to the most relevant existing topic.
func (s *GenerationService) GenerateEssentials(ctx context.Context, matiere, classe string, count int) ([]models.Exercise, error) {
	classe = curriculum.NormalizeGrade(classe)
	subj, err := s.subjects.GetByCode(ctx, strings.ToLower(strings.TrimSpace(matiere)))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if subj == nil {
		return nil, apperr.NotFound("Matière non trouvée.")
	}
	topics, err := s.topics.List(ctx, repository.TopicFilter{Classe: classe, MatiereID: subj.ID})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(topics) == 0 {
		return []models.Exercise{}, nil
	}

	refs := make([]ai.TopicRef, len(topics))
	known := make(map[int64]bool, len(topics))
	for i, t := range topics {
		refs[i] = ai.TopicRef{ID: t.ID, Titre: t.Titre}
		known[t.ID] = true
	}

	ctx = ai.WithPurpose(ctx, "essentials")
	items := s.gateway.GenerateList(ctx, ai.Call{
		Prompt:    ai.EssentialQuestionsPrompt(curriculum.SubjectLabel(subj.Nom), classe, refs, count),
		Classe:    classe,
		MaxTokens: essentialsMaxTokens,
	})

	created := make([]models.Exercise, 0, len(items))
	for _, raw := range items {
		gen, ok := s.parseExercise(raw)
		if !ok {
			continue
		}
		topicID := gen.TopicID
		if !known[topicID] {
			topicID = topics[0].ID
		}
		e := gen.toModel(topicID)
		e.Difficulte = clampDifficulty(gen.Difficulte, 2)
		if err := s.exercises.Create(ctx, e); err != nil {
			return created, apperr.Internal(err)
		}
		created = append(created, *e)
	}

	s.log.Info("essential questions generated", "matiere", subj.Nom, "classe", classe, "created", len(created))
	return created, nil
}

// GenerateTopics creates curriculum topics for a subject and grade, skipping
// titles that already exist.
func (s *GenerationService) GenerateTopics(ctx context.Context, matiere, classe string, count int) ([]models.Topic, error) {
	classe = curriculum.NormalizeGrade(classe)
	subj, err := s.subjects.GetByCode(ctx, strings.ToLower(strings.TrimSpace(matiere)))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if subj == nil {
		return nil, apperr.NotFound("Matière non trouvée.")
	}

	ctx = ai.WithPurpose(ctx, "topics")
	items := s.gateway.GenerateList(ctx, ai.Call{
		Prompt: ai.TopicListPrompt(curriculum.SubjectLabel(subj.Nom), classe, count),
		Classe: classe,
	})

	created := make([]models.Topic, 0, len(items))
	for i, raw := range items {
		if err := ai.Validate(ai.TopicSchema, raw); err != nil {
			s.log.Debug("discarding generated topic", "error", err)
			continue
		}
		var gen generatedTopic
		if err := json.Unmarshal(raw, &gen); err != nil {
			continue
		}
		titre := strings.TrimSpace(gen.Titre)
		exists, err := s.topics.ExistsByTitle(ctx, subj.ID, classe, titre)
		if err != nil {
			return created, apperr.Internal(err)
		}
		if exists {
			continue
		}
		ordre := gen.Ordre
		if ordre == 0 {
			ordre = i + 1
		}
		t := &models.Topic{
			MatiereID:   subj.ID,
			MatiereCode: subj.Nom,
			Classe:      classe,
			Titre:       titre,
			Resume:      strings.TrimSpace(gen.Resume),
			Ordre:       ordre,
		}
		if err := s.topics.Create(ctx, t); err != nil {
			return created, apperr.Internal(err)
		}
		created = append(created, *t)
	}

	s.log.Info("topics generated", "matiere", subj.Nom, "classe", classe, "created", len(created))
	return created, nil
}

// parseExercise validates one generated item. Items failing the schema or
// whose correct_index is outside their options are rejected.
func (s *GenerationService) parseExercise(raw json.RawMessage) (*generatedExercise, bool) {
	if err := ai.Validate(ai.ExerciseSchema, raw); err != nil {
		s.log.Debug("discarding generated exercise", "error", err)
		return nil, false
	}
	var gen generatedExercise
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, false
	}
	if gen.CorrectIndex < 0 || gen.CorrectIndex >= len(gen.Options) {
		s.log.Debug("discarding generated exercise with bad correct_index", "correct_index", gen.CorrectIndex, "options", len(gen.Options))
		return nil, false
	}
	return &gen, true
}

func (g *generatedExercise) toModel(topicID int64) *models.Exercise {
	return &models.Exercise{
		TopicID:             topicID,
		TypeExercice:        models.ExerciseMultipleChoice,
		Question:            strings.TrimSpace(g.Question),
		OptionsImages:       []string{},
		OptionsText:         g.Options,
		CorrectIndex:        g.CorrectIndex,
		FeedbackSuccessText: g.FeedbackSuccess,
		FeedbackFailText:    g.FeedbackFail,
		Difficulte:          clampDifficulty(g.Difficulte, 1),
		PointsRecompense:    models.DefaultRewardPoints,
		GenereParIA:         true,
	}
}

func clampDifficulty(d, def int) int {
	if d < 1 || d > 3 {
		return def
	}
	return d
}
