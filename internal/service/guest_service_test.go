package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database/dbtest"
	"github.com/CheickOuedraogo/tuteur-backend/internal/repository"
)

func TestGuestUsername(t *testing.T) {
	assert.Equal(t, "anonyme_12345678", GuestUsername("1234567890abcdef"))
	assert.Equal(t, "anonyme_abc", GuestUsername("abc"))
}

func TestResolveProfile_GuestLifecycle(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	guests := newTestGuests(db)

	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	guests.now = func() time.Time { return start }

	id := Identity{SessionKey: "0a1b2c3d4e5f6789"}
	missing, err := guests.FindProfile(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, missing)

	profile, err := guests.ResolveProfile(ctx, id, "ce2")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "ce2", profile.Classe)
	assert.False(t, profile.User.IsActive)
	require.NotNil(t, profile.User.ExpiresAt)
	assert.True(t, profile.User.ExpiresAt.Equal(start.Add(7*24*time.Hour)))

	// A later visit keeps the profile and pushes the expiry back.
	later := start.Add(48 * time.Hour)
	guests.now = func() time.Time { return later }
	again, err := guests.ResolveProfile(ctx, id, "cm2")
	require.NoError(t, err)
	assert.Equal(t, profile.ID, again.ID)
	assert.Equal(t, "ce2", again.Classe)

	user, err := repository.NewUserRepository(db).GetByUsername(ctx, "anonyme_0a1b2c3d")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.ExpiresAt.Equal(later.Add(7*24*time.Hour)))
}

func TestResolveProfile_RegisteredLearner(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	guests := newTestGuests(db)

	id, profilID := learnerIdentity(t, db, "moussa", "4eme")
	profile, err := guests.ResolveProfile(ctx, id, "cp1")
	require.NoError(t, err)
	assert.Equal(t, profilID, profile.ID)
	assert.Equal(t, "4eme", profile.Classe)

	_, err = guests.ResolveProfile(ctx, Identity{}, "cp1")
	assert.Error(t, err)
}

func TestResolveProfile_GuestNameHeldByAccount(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	guests := newTestGuests(db)

	owner, profilID := learnerIdentity(t, db, "anonyme_deadbeef", "ce2")
	visitor := Identity{SessionKey: "deadbeef-1111-4222-8333-444455556666"}

	found, err := guests.FindProfile(ctx, visitor)
	require.NoError(t, err)
	assert.Nil(t, found)

	_, err = guests.ResolveProfile(ctx, visitor, "ce2")
	requireKind(t, err, apperr.KindUnauthorized)

	topicID := dbtest.Topic(t, db, "francais", "ce2", "Les accents")
	exID := dbtest.Exercise(t, db, topicID, "Quel mot prend un accent ?", []string{"ecole", "école"}, 1, 15)
	exercises := NewExerciseService(db, guests, seededRand(), nil)

	_, err = exercises.Submit(ctx, visitor, Submission{ExerciceID: exID, ReponseIndex: intPtr(1)})
	requireKind(t, err, apperr.KindUnauthorized)
	_, err = exercises.AdaptiveBatch(ctx, visitor, topicID, nil)
	requireKind(t, err, apperr.KindUnauthorized)

	profile, err := repository.NewProfileRepository(db).GetByUserID(ctx, owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, profilID, profile.ID)
	assert.Zero(t, profile.Points)
}

func TestCleanupExpired(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	guests := newTestGuests(db)

	start := time.Now().UTC()
	guests.now = func() time.Time { return start }
	_, err := guests.ResolveProfile(ctx, Identity{SessionKey: "stale-session-key"}, "cp1")
	require.NoError(t, err)
	learnerIdentity(t, db, "awa", "ce1")

	n, err := guests.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	guests.now = func() time.Time { return start.Add(8 * 24 * time.Hour) }
	n, err = guests.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	profiles, err := repository.NewProfileRepository(db).List(ctx, true)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "awa", profiles[0].User.Username)
}
