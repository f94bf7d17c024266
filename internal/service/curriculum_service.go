package service

import (
	"context"
	"strings"

	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/curriculum"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
	"github.com/CheickOuedraogo/tuteur-backend/internal/repository"
)

// popularTopicCount is the number of topics featured on the home page of
// grades without AI content.
const popularTopicCount = 5

// Home is the landing data for a grade.
type Home struct {
	Classe           string
	UtiliseIA        bool
	Matieres         []models.Subject
	TopicsPopulaires []models.Topic
}

// CurriculumService serves subjects, topics and exercises.
type CurriculumService struct {
	subjects  *repository.SubjectRepository
	topics    *repository.TopicRepository
	exercises *repository.ExerciseRepository
	guests    *GuestService
	aiPolicy  curriculum.AIPolicy
}

func NewCurriculumService(db *database.DB, guests *GuestService, policy curriculum.AIPolicy) *CurriculumService {
	return &CurriculumService{
		subjects:  repository.NewSubjectRepository(db),
		topics:    repository.NewTopicRepository(db),
		exercises: repository.NewExerciseRepository(db),
		guests:    guests,
		aiPolicy:  policy,
	}
}

// defaultGrade returns classe, or the caller's profile grade when classe is empty.
func (s *CurriculumService) defaultGrade(ctx context.Context, id Identity, classe string) (string, error) {
	classe = curriculum.NormalizeGrade(classe)
	if classe != "" || !id.Authenticated() {
		return classe, nil
	}
	profile, err := s.guests.FindProfile(ctx, id)
	if err != nil {
		return "", err
	}
	if profile != nil {
		return profile.Classe, nil
	}
	return "", nil
}

// Subjects lists subjects. With a grade, only subjects having topics in that
// grade and belonging to its official programme are kept.
func (s *CurriculumService) Subjects(ctx context.Context, id Identity, classe string) ([]models.Subject, error) {
	classe, err := s.defaultGrade(ctx, id, classe)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if classe == "" {
		subjects, err := s.subjects.List(ctx)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		return subjects, nil
	}

	withTopics, err := s.subjects.ListWithTopicsForGrade(ctx, classe)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if curriculum.SubjectsForGrade(classe) == nil {
		return withTopics, nil
	}
	allowed := make([]models.Subject, 0, len(withTopics))
	for _, subj := range withTopics {
		if curriculum.IsSubjectAllowed(classe, subj.Nom) {
			allowed = append(allowed, subj)
		}
	}
	return allowed, nil
}

// Subject returns one subject.
func (s *CurriculumService) Subject(ctx context.Context, subjectID int64) (*models.Subject, error) {
	subj, err := s.subjects.GetByID(ctx, subjectID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if subj == nil {
		return nil, apperr.NotFound("Matière non trouvée.")
	}
	return subj, nil
}

// Topics lists topics filtered by subject code and grade. The grade defaults
// to the caller's profile grade.
func (s *CurriculumService) Topics(ctx context.Context, id Identity, matiere, classe string) ([]models.Topic, error) {
	classe, err := s.defaultGrade(ctx, id, classe)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	filter := repository.TopicFilter{Classe: classe}
	if matiere = strings.TrimSpace(matiere); matiere != "" {
		subj, err := s.subjects.GetByCode(ctx, strings.ToLower(matiere))
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if subj == nil {
			return []models.Topic{}, nil
		}
		filter.MatiereID = subj.ID
	}

	topics, err := s.topics.List(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return topics, nil
}

// Topic returns one topic.
func (s *CurriculumService) Topic(ctx context.Context, topicID int64) (*models.Topic, error) {
	topic, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if topic == nil {
		return nil, apperr.NotFound("Topic non trouvé.")
	}
	return topic, nil
}

// Exercises lists exercises, optionally of one topic and one difficulty.
func (s *CurriculumService) Exercises(ctx context.Context, topicID int64, difficulte int) ([]models.Exercise, error) {
	all, err := s.exercises.ListByTopic(ctx, topicID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if difficulte == 0 {
		return all, nil
	}
	filtered := make([]models.Exercise, 0, len(all))
	for _, e := range all {
		if e.Difficulte == difficulte {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Exercise returns one exercise.
func (s *CurriculumService) Exercise(ctx context.Context, exerciseID int64) (*models.Exercise, error) {
	e, err := s.exercises.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if e == nil {
		return nil, apperr.NotFound("Exercice non trouvé.")
	}
	return e, nil
}

// Home returns the landing data of a grade. The youngest grades do not see
// history and geography, and grades without AI content get a short list of
// featured topics.
func (s *CurriculumService) Home(ctx context.Context, classe string) (*Home, error) {
	classe = curriculum.NormalizeGrade(classe)
	home := &Home{
		Classe:           classe,
		UtiliseIA:        s.aiPolicy.UsesAI(classe),
		TopicsPopulaires: []models.Topic{},
	}

	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if classe == "cp1" || classe == "cp2" {
		kept := subjects[:0]
		for _, subj := range subjects {
			if strings.Contains(subj.Nom, "histoire") || strings.Contains(subj.Nom, "geographie") {
				continue
			}
			kept = append(kept, subj)
		}
		subjects = kept
	}
	home.Matieres = subjects

	if !home.UtiliseIA {
		topics, err := s.topics.List(ctx, repository.TopicFilter{Classe: classe, Limit: popularTopicCount})
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if topics != nil {
			home.TopicsPopulaires = topics
		}
	}
	return home, nil
}
