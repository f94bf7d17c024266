package service

import (
	"context"
	"fmt"
	"path"
	"sort"

	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
	"github.com/CheickOuedraogo/tuteur-backend/internal/repository"
)

// Speaker turns text into a narration URL, empty when synthesis failed.
// *audio.Service implements it.
type Speaker interface {
	Generate(ctx context.Context, text string) string
}

// AudioFiles is a store whose files can be enumerated and removed.
type AudioFiles interface {
	List() ([]string, error)
	Remove(name string) error
}

// NarrationReport counts what a narration run produced.
type NarrationReport struct {
	Topics    int
	Exercises int
	Clips     int
	Failed    int
}

// NarrationService pre-generates audio for curriculum content so learners
// hear questions and feedback without waiting for synthesis.
type NarrationService struct {
	topics    *repository.TopicRepository
	exercises *repository.ExerciseRepository
	media     *repository.MediaRepository
	speaker   Speaker
	log       *logger.Logger
}

func NewNarrationService(db *database.DB, speaker Speaker, log *logger.Logger) *NarrationService {
	if log == nil {
		log = logger.Nop()
	}
	return &NarrationService{
		topics:    repository.NewTopicRepository(db),
		exercises: repository.NewExerciseRepository(db),
		media:     repository.NewMediaRepository(db),
		speaker:   speaker,
		log:       log,
	}
}

// FillMissing narrates topics and exercises that have no audio yet: the
// lesson (or summary) of each topic, and each exercise's question and
// feedback texts. A zero topicID covers the whole curriculum.
func (s *NarrationService) FillMissing(ctx context.Context, topicID int64) (*NarrationReport, error) {
	var topics []models.Topic
	if topicID != 0 {
		t, err := s.topics.GetByID(ctx, topicID)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, fmt.Errorf("topic %d not found", topicID)
		}
		topics = []models.Topic{*t}
	} else {
		var err error
		if topics, err = s.topics.List(ctx, repository.TopicFilter{}); err != nil {
			return nil, err
		}
	}

	report := &NarrationReport{}
	for i := range topics {
		if err := s.narrateTopic(ctx, &topics[i], report); err != nil {
			return report, err
		}
	}
	s.log.Info("narration pass finished", "topics", report.Topics, "exercises", report.Exercises,
		"clips", report.Clips, "failed", report.Failed)
	return report, nil
}

func (s *NarrationService) narrateTopic(ctx context.Context, t *models.Topic, report *NarrationReport) error {
	if missing(t.AudioURL) {
		text := t.Resume
		if t.HasLesson() {
			text = *t.ContenuCours
		}
		if url := s.speak(ctx, text, report); url != nil {
			if err := s.topics.SetAudioURL(ctx, t.ID, *url); err != nil {
				return err
			}
			report.Topics++
		}
	}

	exercises, err := s.exercises.ListByTopic(ctx, t.ID)
	if err != nil {
		return err
	}
	for i := range exercises {
		e := &exercises[i]
		changed := false
		for _, f := range []struct {
			text string
			url  **string
		}{
			{e.Question, &e.QuestionAudioURL},
			{e.FeedbackSuccessText, &e.FeedbackSuccessAudioURL},
			{e.FeedbackFailText, &e.FeedbackFailAudioURL},
		} {
			if !missing(*f.url) {
				continue
			}
			if url := s.speak(ctx, f.text, report); url != nil {
				*f.url = url
				changed = true
			}
		}
		if !changed {
			continue
		}
		if err := s.exercises.SaveAudio(ctx, e); err != nil {
			return err
		}
		report.Exercises++
	}
	return nil
}

func (s *NarrationService) speak(ctx context.Context, text string, report *NarrationReport) *string {
	if text == "" {
		return nil
	}
	url := s.speaker.Generate(ctx, text)
	if url == "" {
		report.Failed++
		return nil
	}
	report.Clips++
	return &url
}

func missing(url *string) bool {
	return url == nil || *url == ""
}

// PruneOrphans removes stored audio that no subject, topic or exercise
// references any more, typically narration of regenerated lessons. With
// dryRun the files are only listed.
func (s *NarrationService) PruneOrphans(ctx context.Context, files AudioFiles, dryRun bool) ([]string, error) {
	urls, err := s.media.AudioURLs(ctx)
	if err != nil {
		return nil, err
	}
	referenced := make(map[string]bool, len(urls))
	for _, u := range urls {
		referenced[path.Base(u)] = true
	}

	stored, err := files.List()
	if err != nil {
		return nil, err
	}
	var orphans []string
	for _, name := range stored {
		if referenced[name] {
			continue
		}
		orphans = append(orphans, name)
		if dryRun {
			continue
		}
		if err := files.Remove(name); err != nil {
			return orphans, err
		}
	}
	sort.Strings(orphans)
	if !dryRun && len(orphans) > 0 {
		s.log.Info("orphan audio removed", "count", len(orphans))
	}
	return orphans, nil
}
