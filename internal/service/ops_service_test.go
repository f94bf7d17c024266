package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database/dbtest"
	"github.com/CheickOuedraogo/tuteur-backend/internal/repository"
)

// seedActivity creates one registered learner and one guest who both
// answered an exercise.
func seedActivity(t *testing.T, db *database.DB) (topicID, exID int64) {
	t.Helper()
	ctx := context.Background()
	guests := newTestGuests(db)
	exercises := NewExerciseService(db, guests, seededRand(), nil)

	topicID = dbtest.Topic(t, db, "mathematiques", "ce1", "Additions")
	exID = dbtest.Exercise(t, db, topicID, "2 + 3 ?", []string{"5", "6"}, 0, 10)
	dbtest.Exercise(t, db, topicID, "4 + 4 ?", []string{"7", "8"}, 1, 10)

	learner, _ := learnerIdentity(t, db, "awa", "ce1")
	_, err := exercises.Submit(ctx, learner, Submission{ExerciceID: exID, ReponseIndex: intPtr(0), TempsReponse: intPtr(8)})
	require.NoError(t, err)
	_, err = exercises.Submit(ctx, learner, Submission{ExerciceID: exID + 1, ReponseIndex: intPtr(0)})
	require.NoError(t, err)

	_, err = exercises.Submit(ctx, Identity{SessionKey: "0123456789abcdef"}, Submission{ExerciceID: exID, ReponseIndex: intPtr(0), Classe: "ce1"})
	require.NoError(t, err)
	return topicID, exID
}

func TestBackup_RoundTrip(t *testing.T) {
	ctx := context.Background()
	source := dbtest.New(t)
	topicID, exID := seedActivity(t, source)

	var buf bytes.Buffer
	require.NoError(t, NewBackupService(source, nil).ExportToWriter(ctx, &buf))

	var snapshot BackupData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &snapshot))
	assert.Equal(t, "1.0", snapshot.Version)
	assert.Equal(t, "sqlite", snapshot.DatabaseType)
	require.Len(t, snapshot.Users, 1)
	assert.Equal(t, "awa", snapshot.Users[0].Username)
	assert.Len(t, snapshot.Profiles, 1)
	require.Len(t, snapshot.Topics, 1)
	assert.Equal(t, "mathematiques", snapshot.Topics[0].Matiere)
	assert.Len(t, snapshot.Exercises, 2)
	assert.Len(t, snapshot.Submissions, 2)
	assert.Len(t, snapshot.Progressions, 1)

	target := dbtest.New(t)
	require.NoError(t, NewBackupService(target, nil).ImportFromReader(ctx, bytes.NewReader(buf.Bytes())))

	e, err := repository.NewExerciseRepository(target).GetByID(ctx, exID)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, []string{"5", "6"}, e.OptionsText)
	assert.Equal(t, topicID, e.TopicID)

	profile, err := repository.NewProfileRepository(target).GetByUserID(ctx, snapshot.Users[0].ID)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, 10, profile.Points)

	p, err := repository.NewProgressionRepository(target).Get(ctx, profile.ID, topicID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 2, p.ExercicesTotal)
	assert.Equal(t, 1, p.ErreursConsecutives)

	// Importing twice collides on primary keys and leaves the data intact.
	assert.Error(t, NewBackupService(target, nil).ImportFromReader(ctx, bytes.NewReader(buf.Bytes())))
	count, err := repository.NewUserRepository(target).Count(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBackup_RejectsGarbage(t *testing.T) {
	db := dbtest.New(t)
	err := NewBackupService(db, nil).ImportFromReader(context.Background(), bytes.NewReader([]byte("pas du json")))
	assert.Error(t, err)
}

func TestReport_Progressions(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	seedActivity(t, db)
	reports := NewReportService(db, nil)

	rows, err := reports.Progressions(ctx, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "awa", rows[0].Username)
	assert.InDelta(t, 50.0, rows[0].TauxReussite(), 1e-9)

	none, err := reports.Progressions(ctx, "cm2")
	require.NoError(t, err)
	assert.Empty(t, none)

	learners, err := reports.Learners(ctx, "CE1")
	require.NoError(t, err)
	require.Len(t, learners, 1)
	assert.Equal(t, 2, learners[0].Reponses)

	var buf bytes.Buffer
	require.NoError(t, reports.WriteProgressionReport(ctx, &buf, ""))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetProgressions, sheetLearners}, f.GetSheetList())
	cell := func(sheet, axis string) string {
		v, err := f.GetCellValue(sheet, axis)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "Élève", cell(sheetProgressions, "A1"))
	assert.Equal(t, "awa", cell(sheetProgressions, "A2"))
	assert.Equal(t, "CE1", cell(sheetProgressions, "B2"))
	assert.Equal(t, "Mathématiques", cell(sheetProgressions, "C2"))
	assert.Equal(t, "Additions", cell(sheetProgressions, "D2"))
	assert.Equal(t, "50.0", cell(sheetProgressions, "H2"))
	assert.Equal(t, "10", cell(sheetLearners, "D2"))
}
