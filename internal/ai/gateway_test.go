package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
)

func TestGateway_GenerateBuildsSystemPrompt(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "  Bonjour  "})
	g := NewGateway(mock, GatewayOptions{}, nil)

	text, err := g.Generate(context.Background(), Call{Prompt: "Explique", Classe: "ce1", Context: "Maths"})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", text)

	req, ok := mock.LastCall()
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(req.System, "Tu es un tuteur éducatif intelligent"))
	assert.Contains(t, req.System, "\nL'élève est en CE1.")
	assert.Contains(t, req.System, "\nContexte: Maths")
	assert.Equal(t, 2000, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 1e-9)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, RoleUser, req.Messages[0].Role)
	assert.Equal(t, "Explique", req.Messages[0].Content)
}

func TestGateway_MaxTokensOverride(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "x"})
	g := NewGateway(mock, GatewayOptions{MaxTokens: 500}, nil)
	_, err := g.Generate(context.Background(), Call{Prompt: "p", MaxTokens: 4000})
	require.NoError(t, err)
	req, _ := mock.LastCall()
	assert.Equal(t, 4000, req.MaxTokens)
}

func TestGateway_Errors(t *testing.T) {
	_, err := NewGateway(nil, GatewayOptions{}, nil).Generate(context.Background(), Call{Prompt: "p"})
	assert.True(t, apperr.IsKind(err, apperr.KindAIConfiguration))

	mock := NewMockProvider(MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}})
	_, err = NewGateway(mock, GatewayOptions{}, nil).Generate(context.Background(), Call{Prompt: "p"})
	assert.True(t, apperr.IsKind(err, apperr.KindAIService))

	mock = NewMockProvider(MockResponse{Err: ErrNotConfigured})
	_, err = NewGateway(mock, GatewayOptions{}, nil).Generate(context.Background(), Call{Prompt: "p"})
	assert.True(t, apperr.IsKind(err, apperr.KindAIConfiguration))
}

func TestGateway_GenerateSafe(t *testing.T) {
	assert.Equal(t, "défaut", NewGateway(nil, GatewayOptions{}, nil).GenerateSafe(context.Background(), Call{}, "défaut"))

	mock := NewMockProvider(MockResponse{Text: "réponse"})
	assert.Equal(t, "réponse", NewGateway(mock, GatewayOptions{}, nil).GenerateSafe(context.Background(), Call{}, "défaut"))
}

func TestGateway_GenerateList(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "Voici:\n[{\"titre\":\"A\"},{\"titre\":\"B\"}]"},
		MockResponse{Text: "désolé, je ne peux pas"},
	)
	g := NewGateway(mock, GatewayOptions{}, nil)

	items := g.GenerateList(context.Background(), Call{Prompt: "p"})
	require.Len(t, items, 2)
	var topic struct{ Titre string }
	require.NoError(t, json.Unmarshal(items[1], &topic))
	assert.Equal(t, "B", topic.Titre)

	assert.Empty(t, g.GenerateList(context.Background(), Call{Prompt: "p"}))
	assert.Nil(t, g.GenerateObject(context.Background(), Call{Prompt: "p"}))
}

func TestGateway_Configured(t *testing.T) {
	var nilGateway *Gateway
	assert.False(t, nilGateway.Configured())
	assert.False(t, NewGateway(nil, GatewayOptions{}, nil).Configured())
	assert.True(t, NewGateway(NewMockProvider(), GatewayOptions{}, nil).Configured())
}
