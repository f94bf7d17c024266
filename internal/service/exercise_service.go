package service

import (
	"context"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/curriculum"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
	"github.com/CheickOuedraogo/tuteur-backend/internal/repository"
)

const (
	// BatchSize is the number of exercises served per adaptive batch.
	BatchSize = 5

	// DefaultSubmitClasse is the grade given to profiles created by a submission.
	DefaultSubmitClasse = "cp1"

	unknownAnswer = "Inconnue"
	visualSuccess = "Étoiles ! Animations joyeuses !"
	visualFailure = "Essaie encore !"
)

// Batch is one adaptive selection of exercises for a topic.
type Batch struct {
	Exercises    []models.Exercise
	HasMore      bool
	TotalInTopic int
}

// Submission is an answer sent by a learner.
type Submission struct {
	ExerciceID   int64
	ReponseIndex *int
	TempsReponse *int
	Classe       string
}

// Feedback is the grading result returned to the learner.
type Feedback struct {
	Success             bool
	Score               int
	FeedbackText        string
	Explication         string
	ReponseCorrecte     string
	ReponseChoisie      string
	FeedbackAudioURL    *string
	VisuelDesc          string
	PointsTotal         int
	ErreursConsecutives int
}

// ExerciseService selects adaptive exercise batches and grades answers.
type ExerciseService struct {
	db           *database.DB
	topics       *repository.TopicRepository
	exercises    *repository.ExerciseRepository
	submissions  *repository.SubmissionRepository
	progressions *repository.ProgressionRepository
	profiles     *repository.ProfileRepository
	guests       *GuestService
	log          *logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewExerciseService creates an exercise service. A nil rng uses a randomly
// seeded source.
func NewExerciseService(db *database.DB, guests *GuestService, rng *rand.Rand, log *logger.Logger) *ExerciseService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ExerciseService{
		db:           db,
		topics:       repository.NewTopicRepository(db),
		exercises:    repository.NewExerciseRepository(db),
		submissions:  repository.NewSubmissionRepository(db),
		progressions: repository.NewProgressionRepository(db),
		profiles:     repository.NewProfileRepository(db),
		guests:       guests,
		log:          log,
		rng:          rng,
	}
}

// ParseExcludeIDs converts raw query values to exercise IDs, dropping
// anything that is not a non-negative integer.
func ParseExcludeIDs(values []string) []int64 {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || strings.TrimLeft(v, "0123456789") != "" {
			continue
		}
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// AdaptiveBatch returns up to BatchSize random exercises of a topic,
// preferring those the caller has not mastered and never returning the
// ones in exclude.
func (s *ExerciseService) AdaptiveBatch(ctx context.Context, id Identity, topicID int64, exclude []int64) (*Batch, error) {
	topic, err := s.topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if topic == nil {
		return nil, apperr.NotFound("Topic non trouvé.")
	}

	var profile *models.Profile
	if id.Authenticated() {
		profile, err = s.guests.FindProfile(ctx, id)
	} else {
		profile, err = s.guests.ResolveProfile(ctx, id, topic.Classe)
	}
	if err != nil {
		return nil, apperr.From(err)
	}

	var mastered []int64
	if profile != nil {
		mastered, err = s.submissions.MasteredExerciseIDs(ctx, profile.ID, topic.ID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
	}
	union := unionIDs(mastered, exclude)

	candidates, err := s.exercises.ListIDs(ctx, topic.ID, union)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if len(candidates) < BatchSize {
		// Recycle mastered exercises once fresh ones run out.
		candidates, err = s.exercises.ListIDs(ctx, topic.ID, unionIDs(exclude))
		if err != nil {
			return nil, apperr.Internal(err)
		}
	}

	picked := s.pick(candidates, BatchSize)
	exercises, err := s.exercises.GetByIDs(ctx, picked)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	remaining, err := s.exercises.CountByTopic(ctx, topic.ID, unionIDs(union, picked))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	total, err := s.exercises.CountByTopic(ctx, topic.ID, nil)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &Batch{Exercises: exercises, HasMore: remaining > 0, TotalInTopic: total}, nil
}

// pick draws up to n distinct IDs uniformly at random.
func (s *ExerciseService) pick(ids []int64, n int) []int64 {
	shuffled := append([]int64(nil), ids...)
	s.mu.Lock()
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	s.mu.Unlock()
	if len(shuffled) > n {
		shuffled = shuffled[:n]
	}
	return shuffled
}

func unionIDs(lists ...[]int64) []int64 {
	seen := make(map[int64]struct{})
	var out []int64
	for _, list := range lists {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// Submit grades an answer, records it and updates the learner's progression
// and points in one transaction.
func (s *ExerciseService) Submit(ctx context.Context, id Identity, sub Submission) (*Feedback, error) {
	if sub.ExerciceID <= 0 || sub.ReponseIndex == nil {
		return nil, apperr.InvalidExercise("exercice_id et reponse_index requis")
	}
	classe := curriculum.NormalizeGrade(sub.Classe)
	if !curriculum.IsValidGrade(classe) {
		classe = DefaultSubmitClasse
	}

	exercise, err := s.exercises.GetByID(ctx, sub.ExerciceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exercise == nil {
		return nil, apperr.NotFound("Exercice non trouvé.")
	}

	profile, err := s.guests.ResolveProfile(ctx, id, classe)
	if err != nil {
		return nil, apperr.From(err)
	}

	fb := grade(exercise, *sub.ReponseIndex)

	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		if err := s.submissions.WithTx(tx).Create(ctx, &models.Submission{
			ProfilID:     profile.ID,
			ExerciceID:   exercise.ID,
			ReponseIndex: *sub.ReponseIndex,
			EstCorrecte:  fb.Success,
			Score:        fb.Score,
			TempsReponse: sub.TempsReponse,
		}); err != nil {
			return err
		}

		progressions := s.progressions.WithTx(tx)
		if err := progressions.Ensure(ctx, profile.ID, exercise.TopicID); err != nil {
			return err
		}
		if _, err := progressions.Lock(ctx, profile.ID, exercise.TopicID); err != nil {
			return err
		}
		if err := progressions.ApplyAttempt(ctx, profile.ID, exercise.TopicID, fb.Success, fb.Score); err != nil {
			return err
		}

		profiles := s.profiles.WithTx(tx)
		var (
			total int
			err   error
		)
		if fb.Success {
			total, err = profiles.AddPoints(ctx, profile.ID, fb.Score)
		} else {
			total, err = profiles.Points(ctx, profile.ID)
		}
		if err != nil {
			return err
		}
		fb.PointsTotal = total

		p, err := progressions.Get(ctx, profile.ID, exercise.TopicID)
		if err != nil {
			return err
		}
		if p != nil {
			fb.ErreursConsecutives = p.ErreursConsecutives
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	username := id.Username
	if profile.User != nil {
		username = profile.User.Username
	}
	s.log.Info("answer submitted", "user", username, "exercice_id", exercise.ID, "correct", fb.Success)
	return fb, nil
}

// grade evaluates a chosen index against an exercise and composes the
// learner-facing explanation. Out-of-range indexes grade as wrong and are
// reported as an unknown answer.
func grade(e *models.Exercise, chosen int) *Feedback {
	options := e.Options()
	label := func(i int) string {
		if i < 0 || i >= len(options) {
			return unknownAnswer
		}
		return options[i]
	}

	fb := &Feedback{
		Success:         chosen == e.CorrectIndex,
		ReponseChoisie:  label(chosen),
		ReponseCorrecte: label(e.CorrectIndex),
	}
	if fb.Success {
		fb.Score = e.PointsRecompense
		fb.FeedbackText = e.FeedbackSuccessText
		fb.FeedbackAudioURL = e.FeedbackSuccessAudioURL
		fb.VisuelDesc = visualSuccess
		fb.Explication = "Excellente réponse ! " + fb.ReponseChoisie + " est bien la bonne réponse. " + e.FeedbackSuccessText
	} else {
		fb.FeedbackText = e.FeedbackFailText
		fb.FeedbackAudioURL = e.FeedbackFailAudioURL
		fb.VisuelDesc = visualFailure
		fb.Explication = "Ce n'est pas la bonne réponse. Tu as choisi '" + fb.ReponseChoisie +
			"', mais la bonne réponse était '" + fb.ReponseCorrecte + "'. " + e.FeedbackFailText
	}
	return fb
}
