package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"prose around list", "Voici les exercices :\n[{\"a\":1}]\nBonne chance !", `[{"a":1}]`},
		{"code fence", "```json\n{\"a\": 2}\n```", `{"a": 2}`},
		{"line comment", "{\"a\": 1 // un\n}", "{\"a\": 1 \n}"},
		{"block comment", `{"a": /* note */ 1}`, `{"a":  1}`},
		{"slashes in string kept", `{"url": "http://x/y"}`, `{"url": "http://x/y"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.reply)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestExtractJSON_NoPayload(t *testing.T) {
	for _, reply := range []string{"", "pas de JSON ici", "{ cassé", "[1, 2"} {
		_, err := ExtractJSON(reply)
		assert.True(t, errors.Is(err, ErrNoJSON), "reply %q", reply)
	}
}

func TestExtractJSONList(t *testing.T) {
	items, err := ExtractJSONList(`Résultat: [{"q":1},{"q":2}]`)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = ExtractJSONList(`{"q":1}`)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.JSONEq(t, `{"q":1}`, string(items[0]))

	_, err = ExtractJSONList(`"juste une chaîne"`)
	assert.Error(t, err)
}
