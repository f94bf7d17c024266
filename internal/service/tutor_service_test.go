package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CheickOuedraogo/tuteur-backend/internal/ai"
	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/curriculum"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database/dbtest"
	"github.com/CheickOuedraogo/tuteur-backend/internal/security"
)

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("redis unavailable")
}

func TestTutorChat(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	mock := ai.NewMockProvider(ai.MockResponse{Text: " Bonjour Awa ! 🦊 "})
	tutor := NewTutorService(newTestGuests(db), ai.NewGateway(mock, ai.GatewayOptions{}, nil), nil, curriculum.NewAIPolicy(nil), nil)

	id, _ := learnerIdentity(t, db, "awa", "5eme")
	history := []ai.ChatTurn{{Role: "user", Content: "Salut"}, {Role: "assistant", Content: "Coucou"}}

	reply, err := tutor.Chat(ctx, id, ChatRequest{Message: "C'est quoi une fraction ?", History: history})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour Awa ! 🦊", reply)

	req, ok := mock.LastCall()
	require.True(t, ok)
	assert.Equal(t, "C'est quoi une fraction ?", req.Messages[0].Content)
	assert.Contains(t, req.System, "Tu es Sandy")
	assert.Contains(t, req.System, "L'élève actuel s'appelle awa, il est en 5EME")
	assert.Contains(t, req.System, "(6ème-Terminale)")
	assert.Contains(t, req.System, "Élève: Salut")
	assert.Contains(t, req.System, "Sandy: Coucou")
}

func TestTutorChat_Refusals(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	mock := ai.NewMockProvider()
	tutor := NewTutorService(newTestGuests(db), ai.NewGateway(mock, ai.GatewayOptions{}, nil), nil, curriculum.NewAIPolicy(nil), nil)

	_, err := tutor.Chat(ctx, Identity{SessionKey: "guest"}, ChatRequest{Message: "Bonjour"})
	requireKind(t, err, apperr.KindUnauthorized)

	learner, _ := learnerIdentity(t, db, "awa", "ce1")
	_, err = tutor.Chat(ctx, learner, ChatRequest{Message: "   "})
	requireKind(t, err, apperr.KindValidation)

	_, err = tutor.Chat(ctx, Identity{UserID: 777, Username: "ghost"}, ChatRequest{Message: "Bonjour"})
	requireKind(t, err, apperr.KindProfileNotFound)

	young, _ := learnerIdentity(t, db, "petit", "cp2")
	_, err = tutor.Chat(ctx, young, ChatRequest{Message: "Bonjour"})
	requireKind(t, err, apperr.KindClassNotAllowed)

	assert.Zero(t, mock.CallCount())
}

func TestTutorChat_ProviderFailures(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	learner, _ := learnerIdentity(t, db, "awa", "ce1")
	policy := curriculum.NewAIPolicy(nil)

	unconfigured := NewTutorService(newTestGuests(db), ai.NewGateway(nil, ai.GatewayOptions{}, nil), nil, policy, nil)
	_, err := unconfigured.Chat(ctx, learner, ChatRequest{Message: "Bonjour"})
	requireKind(t, err, apperr.KindAIConfiguration)

	mock := ai.NewMockProvider(
		ai.MockResponse{Err: &ai.ErrProviderUnavailable{Err: errors.New("502")}},
		ai.MockResponse{Text: "   "},
	)
	tutor := NewTutorService(newTestGuests(db), ai.NewGateway(mock, ai.GatewayOptions{}, nil), nil, policy, nil)

	_, err = tutor.Chat(ctx, learner, ChatRequest{Message: "Bonjour"})
	requireKind(t, err, apperr.KindAIService)

	_, err = tutor.Chat(ctx, learner, ChatRequest{Message: "Bonjour"})
	requireKind(t, err, apperr.KindInternal)
}

func TestTutorChat_RateLimited(t *testing.T) {
	ctx := context.Background()
	db := dbtest.New(t)
	learner, _ := learnerIdentity(t, db, "awa", "ce1")

	limiter := security.NewRateLimiter(2, time.Minute)
	defer limiter.Close()

	mock := ai.NewMockProvider(ai.MockResponse{Text: "un"}, ai.MockResponse{Text: "deux"}, ai.MockResponse{Text: "trois"})
	tutor := NewTutorService(newTestGuests(db), ai.NewGateway(mock, ai.GatewayOptions{}, nil), limiter, curriculum.NewAIPolicy(nil), nil)

	for _, want := range []string{"un", "deux"} {
		reply, err := tutor.Chat(ctx, learner, ChatRequest{Message: "?"})
		require.NoError(t, err)
		assert.Equal(t, want, reply)
	}
	_, err := tutor.Chat(ctx, learner, ChatRequest{Message: "?"})
	requireKind(t, err, apperr.KindRateLimited)
	assert.Equal(t, 2, mock.CallCount())

	// A failing limiter lets the message through.
	open := NewTutorService(newTestGuests(db), ai.NewGateway(mock, ai.GatewayOptions{}, nil), brokenLimiter{}, curriculum.NewAIPolicy(nil), nil)
	reply, err := open.Chat(ctx, learner, ChatRequest{Message: "?"})
	require.NoError(t, err)
	assert.Equal(t, "trois", reply)
}
