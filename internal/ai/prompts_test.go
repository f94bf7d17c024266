package ai

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemPrompt(t *testing.T) {
	assert.Equal(t, baseSystemPrompt, SystemPrompt("", ""))
	assert.True(t, strings.HasSuffix(SystemPrompt("6eme", ""), "\nL'élève est en 6EME."))
}

func TestEssentialQuestionsPromptListsTopics(t *testing.T) {
	p := EssentialQuestionsPrompt("histoire", "cm2", []TopicRef{{ID: 4, Titre: "Les royaumes"}, {ID: 9, Titre: "La colonisation"}}, 20)
	assert.Contains(t, p, "- 4: Les royaumes\n- 9: La colonisation")
	assert.Contains(t, p, "les 20 questions")
	assert.Contains(t, p, "CM2 en HISTOIRE")
}

func TestTutorContextKeepsRecentHistory(t *testing.T) {
	var history []ChatTurn
	for i := 1; i <= 7; i++ {
		role := "assistant"
		if i%2 == 1 {
			role = "user"
		}
		history = append(history, ChatTurn{Role: role, Content: fmt.Sprintf("msg%d", i)})
	}

	ctx := TutorContext(ChatLearner{Username: "awa", Classe: "ce2", Points: 40}, history)
	assert.Contains(t, ctx, "s'appelle awa, il est en CE2 et a cumulé 40 points")
	assert.NotContains(t, ctx, "msg2\n")
	assert.Contains(t, ctx, "Élève: msg3\n")
	assert.Contains(t, ctx, "Sandy: msg4\n")
	assert.Contains(t, ctx, "Élève: msg7\n")
}

func TestTutorContextWithoutHistory(t *testing.T) {
	ctx := TutorContext(ChatLearner{Classe: "1ere", Secondary: true}, nil)
	assert.Contains(t, ctx, "s'appelle Élève")
	assert.Contains(t, ctx, "(6ème-Terminale)")
	assert.NotContains(t, ctx, "Historique")
}

func TestBuildOpenAIMessages(t *testing.T) {
	msgs := buildOpenAIMessages(Request{
		System: "sys",
		Messages: []Message{
			{Role: RoleUser, Content: "q"},
			{Role: RoleAssistant, Content: "a"},
		},
	})
	require.Len(t, msgs, 3)
	assert.Equal(t, openai.ChatMessageRoleSystem, msgs[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, msgs[1].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, msgs[2].Role)
}
