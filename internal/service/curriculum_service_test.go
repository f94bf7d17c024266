package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/curriculum"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database/dbtest"
	"github.com/CheickOuedraogo/tuteur-backend/internal/models"
)

func subjectCodes(subjects []models.Subject) []string {
	codes := make([]string, len(subjects))
	for i, s := range subjects {
		codes[i] = s.Nom
	}
	return codes
}

func TestCurriculum_SubjectsFollowProgramme(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	svc := NewCurriculumService(db, newTestGuests(db), curriculum.NewAIPolicy(nil))

	dbtest.Topic(t, db, "lecture", "cp1", "Les voyelles")
	dbtest.Topic(t, db, "histoire", "cp1", "Les royaumes")
	dbtest.Topic(t, db, "histoire", "ce1", "Les royaumes mossi")

	got, err := svc.Subjects(ctx, Identity{}, "CP1")
	require.NoError(t, err)
	assert.Equal(t, []string{"lecture"}, subjectCodes(got))

	all, err := svc.Subjects(ctx, Identity{}, "")
	require.NoError(t, err)
	assert.Len(t, all, 27)

	id, _ := learnerIdentity(t, db, "awa", "ce1")
	mine, err := svc.Subjects(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"histoire"}, subjectCodes(mine))
}

func TestCurriculum_Topics(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	svc := NewCurriculumService(db, newTestGuests(db), curriculum.NewAIPolicy(nil))

	additions := dbtest.Topic(t, db, "mathematiques", "ce1", "Additions")
	dbtest.Topic(t, db, "francais", "ce1", "Le verbe")
	dbtest.Topic(t, db, "mathematiques", "ce2", "Divisions")

	topics, err := svc.Topics(ctx, Identity{}, "Mathematiques", "ce1")
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, additions, topics[0].ID)
	assert.Equal(t, "mathematiques", topics[0].MatiereCode)

	none, err := svc.Topics(ctx, Identity{}, "astronomie", "ce1")
	require.NoError(t, err)
	assert.Empty(t, none)

	topic, err := svc.Topic(ctx, additions)
	require.NoError(t, err)
	assert.Equal(t, "Additions", topic.Titre)

	_, err = svc.Topic(ctx, 999)
	requireKind(t, err, apperr.KindNotFound)
	_, err = svc.Subject(ctx, 999)
	requireKind(t, err, apperr.KindNotFound)
	_, err = svc.Exercise(ctx, 999)
	requireKind(t, err, apperr.KindNotFound)
}

func TestCurriculum_ExercisesByDifficulty(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	svc := NewCurriculumService(db, newTestGuests(db), curriculum.NewAIPolicy(nil))

	topicID := dbtest.Topic(t, db, "mathematiques", "ce1", "Additions")
	ids := dbtest.Exercises(t, db, topicID, 3)
	_, err := db.ExecContext(ctx, "UPDATE exercices SET difficulte = 2 WHERE id = ?", ids[2])
	require.NoError(t, err)

	all, err := svc.Exercises(ctx, topicID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	hard, err := svc.Exercises(ctx, topicID, 2)
	require.NoError(t, err)
	require.Len(t, hard, 1)
	assert.Equal(t, ids[2], hard[0].ID)
	assert.Equal(t, []string{"a", "b", "c"}, hard[0].OptionsText)
}

func TestCurriculum_Home(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	svc := NewCurriculumService(db, newTestGuests(db), curriculum.NewAIPolicy(nil))

	for i := 0; i < 7; i++ {
		dbtest.Topic(t, db, "lecture", "cp1", fmt.Sprintf("Leçon %d", i))
	}

	home, err := svc.Home(ctx, "CP1")
	require.NoError(t, err)
	assert.Equal(t, "cp1", home.Classe)
	assert.False(t, home.UtiliseIA)
	assert.Len(t, home.TopicsPopulaires, 5)
	codes := subjectCodes(home.Matieres)
	assert.NotContains(t, codes, "histoire")
	assert.NotContains(t, codes, "geographie")
	assert.Len(t, codes, 25)

	upper, err := svc.Home(ctx, "ce1")
	require.NoError(t, err)
	assert.True(t, upper.UtiliseIA)
	assert.Empty(t, upper.TopicsPopulaires)
	assert.Len(t, upper.Matieres, 27)
}

func TestProgressionService_List(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	guests := newTestGuests(db)
	progress := NewProgressionService(db, guests)
	exercises := NewExerciseService(db, guests, seededRand(), nil)

	_, err := progress.List(ctx, Identity{SessionKey: "guest"})
	requireKind(t, err, apperr.KindUnauthorized)

	_, err = progress.List(ctx, Identity{UserID: 4242, Username: "ghost"})
	requireKind(t, err, apperr.KindProfileNotFound)

	id, _ := learnerIdentity(t, db, "awa", "ce1")
	empty, err := progress.List(ctx, id)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	topicID := dbtest.Topic(t, db, "mathematiques", "ce1", "Additions")
	exID := dbtest.Exercise(t, db, topicID, "1 + 1 ?", []string{"2", "3"}, 0, 10)
	_, err = exercises.Submit(ctx, id, Submission{ExerciceID: exID, ReponseIndex: intPtr(0)})
	require.NoError(t, err)

	list, err := progress.List(ctx, id)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, topicID, list[0].TopicID)
	require.NotNil(t, list[0].Topic)
	assert.Equal(t, "Additions", list[0].Topic.Titre)
	assert.InDelta(t, 100.0, list[0].TauxReussite(), 1e-9)
}
