package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database/dbtest"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := NewUserRepository(db)

	expires := time.Now().UTC().Add(-time.Hour)
	guest := &models.User{Username: "anonyme_1234abcd", IsGuest: true, ExpiresAt: &expires}
	require.NoError(t, repo.Create(ctx, guest))
	require.NotZero(t, guest.ID)

	member := &models.User{Username: "awa", Email: "awa@example.bf", IsActive: true}
	require.NoError(t, repo.Create(ctx, member))

	got, err := repo.GetByUsername(ctx, "anonyme_1234abcd")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsGuest)
	assert.False(t, got.IsActive)
	assert.Equal(t, "", got.Email)
	require.NotNil(t, got.ExpiresAt)

	byEmail, err := repo.GetByEmail(ctx, "awa@example.bf")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, member.ID, byEmail.ID)

	missing, err := repo.GetByID(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	deleted, err := repo.DeleteExpiredGuests(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	count, err := repo.Count(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestExtendGuestKeepsGuestAlive(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	repo := NewUserRepository(db)

	expires := time.Now().UTC().Add(-time.Minute)
	guest := &models.User{Username: "anonyme_deadbeef", IsGuest: true, ExpiresAt: &expires}
	require.NoError(t, repo.Create(ctx, guest))

	require.NoError(t, repo.ExtendGuest(ctx, guest.ID, time.Now().UTC().Add(time.Hour)))

	deleted, err := repo.DeleteExpiredGuests(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestProfileRepository(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	users := NewUserRepository(db)
	profiles := NewProfileRepository(db)

	user := &models.User{Username: "ali", IsActive: true}
	require.NoError(t, users.Create(ctx, user))

	p := &models.Profile{UserID: user.ID, Classe: "ce1"}
	require.NoError(t, profiles.Create(ctx, p))

	got, err := profiles.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ce1", got.Classe)
	assert.Equal(t, []string{}, got.Badges)
	assert.Equal(t, "ali", got.User.Username)

	got.Classe = "ce2"
	got.Badges = []string{"premier_pas"}
	require.NoError(t, profiles.Update(ctx, got))

	points, err := profiles.AddPoints(ctx, got.ID, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, points)

	reloaded, err := profiles.GetByID(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, "ce2", reloaded.Classe)
	assert.Equal(t, []string{"premier_pas"}, reloaded.Badges)
	assert.Equal(t, 15, reloaded.Points)

	none, err := profiles.GetByUserID(ctx, 4242)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSubjectRepositoryListWithTopicsForGrade(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	dbtest.Topic(t, db, "arithmetique", "cp1", "Numération 0-10")
	dbtest.Topic(t, db, "lecture", "cp1", "Les voyelles")
	dbtest.Topic(t, db, "histoire", "ce1", "Les royaumes mossi")

	repo := NewSubjectRepository(db)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 27)

	cp1, err := repo.ListWithTopicsForGrade(ctx, "cp1")
	require.NoError(t, err)
	require.Len(t, cp1, 2)
	assert.Equal(t, "lecture", cp1[0].Nom)
	assert.Equal(t, "arithmetique", cp1[1].Nom)

	s, err := repo.GetByCode(ctx, "histoire")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "Histoire", s.Description)
}

func TestTopicRepository(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	topicID := dbtest.Topic(t, db, "arithmetique", "ce1", "Les additions")
	dbtest.Topic(t, db, "lecture", "ce1", "Le son ou")
	dbtest.Topic(t, db, "lecture", "cp1", "Les voyelles")

	repo := NewTopicRepository(db)

	topic, err := repo.GetByID(ctx, topicID)
	require.NoError(t, err)
	require.NotNil(t, topic)
	assert.Equal(t, "arithmetique", topic.MatiereCode)
	assert.False(t, topic.HasLesson())

	require.NoError(t, repo.SaveLesson(ctx, topicID, "Additionner, c'est réunir.", "/media/audio/abc.mp3"))
	topic, err = repo.GetByID(ctx, topicID)
	require.NoError(t, err)
	require.True(t, topic.HasLesson())
	assert.Equal(t, "/media/audio/abc.mp3", *topic.AudioURL)

	ce1, err := repo.List(ctx, TopicFilter{Classe: "ce1"})
	require.NoError(t, err)
	assert.Len(t, ce1, 2)

	limited, err := repo.List(ctx, TopicFilter{Classe: "ce1", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	exists, err := repo.ExistsByTitle(ctx, topic.MatiereID, "ce1", "Les additions")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestExerciseRepository(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	topicID := dbtest.Topic(t, db, "arithmetique", "cp1", "Numération 0-10")
	ids := dbtest.Exercises(t, db, topicID, 4)

	repo := NewExerciseRepository(db)

	got, err := repo.ListIDs(ctx, topicID, []int64{ids[0], ids[2]})
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[1], ids[3]}, got)

	count, err := repo.CountByTopic(ctx, topicID, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	count, err = repo.CountByTopic(ctx, topicID, ids[:3])
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	ordered, err := repo.GetByIDs(ctx, []int64{ids[3], 9999, ids[1]})
	require.NoError(t, err)
	require.Len(t, ordered, 2)
	assert.Equal(t, ids[3], ordered[0].ID)
	assert.Equal(t, ids[1], ordered[1].ID)
	assert.Equal(t, []string{"a", "b", "c"}, ordered[0].OptionsText)
	assert.Equal(t, "Numération 0-10", ordered[0].TopicTitre)

	created := &models.Exercise{
		TopicID:      topicID,
		Question:     "Combien font 2 + 3 ?",
		OptionsText:  []string{"4", "5", "6", "7"},
		CorrectIndex: 1,
		GenereParIA:  true,
	}
	require.NoError(t, repo.Create(ctx, created))

	loaded, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, models.ExerciseMultipleChoice, loaded.TypeExercice)
	assert.Equal(t, models.DefaultFeedbackSuccess, loaded.FeedbackSuccessText)
	assert.Equal(t, models.DefaultRewardPoints, loaded.PointsRecompense)
	assert.True(t, loaded.GenereParIA)
	assert.Equal(t, []string{}, loaded.OptionsImages)
}

func TestSubmissionRepositoryMasteredExerciseIDs(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	topicID := dbtest.Topic(t, db, "arithmetique", "cp1", "Numération 0-10")
	otherTopic := dbtest.Topic(t, db, "lecture", "cp1", "Les voyelles")
	ids := dbtest.Exercises(t, db, topicID, 3)
	other := dbtest.Exercises(t, db, otherTopic, 1)
	_, profilID := dbtest.Learner(t, db, "moussa", "cp1")

	repo := NewSubmissionRepository(db)
	for _, s := range []models.Submission{
		{ProfilID: profilID, ExerciceID: ids[0], ReponseIndex: 0, EstCorrecte: true, Score: 10},
		{ProfilID: profilID, ExerciceID: ids[0], ReponseIndex: 0, EstCorrecte: true, Score: 10},
		{ProfilID: profilID, ExerciceID: ids[1], ReponseIndex: 2, EstCorrecte: false},
		{ProfilID: profilID, ExerciceID: other[0], ReponseIndex: 0, EstCorrecte: true, Score: 10},
	} {
		s := s
		require.NoError(t, repo.Create(ctx, &s))
	}

	mastered, err := repo.MasteredExerciseIDs(ctx, profilID, topicID)
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[0]}, mastered)

	count, err := repo.CountByProfile(ctx, profilID)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestProgressionRepositoryApplyAttempt(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	topicID := dbtest.Topic(t, db, "arithmetique", "cp1", "Numération 0-10")
	_, profilID := dbtest.Learner(t, db, "fatim", "cp1")

	repo := NewProgressionRepository(db)

	err := db.WithTx(ctx, func(tx *database.Tx) error {
		txRepo := repo.WithTx(tx)
		require.NoError(t, txRepo.Ensure(ctx, profilID, topicID))
		require.NoError(t, txRepo.Ensure(ctx, profilID, topicID))
		p, err := txRepo.Lock(ctx, profilID, topicID)
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.Zero(t, p.ExercicesTotal)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, repo.ApplyAttempt(ctx, profilID, topicID, false, 0))
	require.NoError(t, repo.ApplyAttempt(ctx, profilID, topicID, false, 0))

	p, err := repo.Get(ctx, profilID, topicID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.ErreursConsecutives)
	assert.Equal(t, 2, p.ExercicesTotal)

	require.NoError(t, repo.ApplyAttempt(ctx, profilID, topicID, true, 10))
	p, err = repo.Get(ctx, profilID, topicID)
	require.NoError(t, err)
	assert.Equal(t, 0, p.ErreursConsecutives)
	assert.Equal(t, 3, p.ExercicesTotal)
	assert.Equal(t, 1, p.ExercicesReussis)
	assert.Equal(t, 10, p.ScoreTotal)

	list, err := repo.ListByProfile(ctx, profilID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Numération 0-10", list[0].Topic.Titre)

	assert.Error(t, repo.ApplyAttempt(ctx, profilID, 9999, true, 10))
}

func TestDecodeList(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", []string{}},
		{"[]", []string{}},
		{`["a","b"]`, []string{"a", "b"}},
		{"not json", []string{}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, decodeList(tt.raw), "decodeList(%q)", tt.raw)
	}
	assert.Equal(t, "[]", encodeList(nil))
}
