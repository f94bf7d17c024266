package service

import (
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database/dbtest"
)

func newTestGuests(db *database.DB) *GuestService {
	return NewGuestService(db, 7*24*time.Hour, nil)
}

func seededRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func learnerIdentity(t *testing.T, db *database.DB, username, classe string) (Identity, int64) {
	t.Helper()
	userID, profilID := dbtest.Learner(t, db, username, classe)
	return Identity{UserID: userID, Username: username}, profilID
}

func requireKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperr.IsKind(err, kind), "got %v, want kind %v", err, kind)
}

func intPtr(i int) *int { return &i }

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
