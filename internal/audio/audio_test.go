package audio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSynth struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeSynth) Synthesize(_ context.Context, text, _ string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return []byte("ID3" + text), nil
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"**Bravo** !", "Bravo !"},
		{"## Introduction\nLe mil", "Introduction\nLe mil"},
		{"  *a* ### b  ", "a b"},
		{"rien à nettoyer", "rien à nettoyer"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanText(tt.in), tt.in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "éé...", truncate("ééé", 2))
}

func TestService_GenerateCachesByContent(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)
	synth := &fakeSynth{}
	svc := NewService(synth, store, "fr", 0, nil)
	ctx := context.Background()

	url := svc.Generate(ctx, "**Le mil** pousse au Sahel.")
	want := "/media/audio/" + FileName("Le mil pousse au Sahel.")
	assert.Equal(t, want, url)
	require.Len(t, synth.calls, 1)
	assert.Equal(t, "Le mil pousse au Sahel.", synth.calls[0])

	// Same text after cleaning hits the cache.
	assert.Equal(t, want, svc.Generate(ctx, "Le mil pousse au Sahel."))
	assert.Len(t, synth.calls, 1)

	names, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{FileName("Le mil pousse au Sahel.")}, names)
}

func TestService_GenerateTruncatesLongText(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)
	synth := &fakeSynth{}
	svc := NewService(synth, store, "fr", 800, nil)

	require.NotEmpty(t, svc.Generate(context.Background(), strings.Repeat("a", 900)))
	require.Len(t, synth.calls, 1)
	assert.Equal(t, 803, utf8.RuneCountInString(synth.calls[0]))
	assert.True(t, strings.HasSuffix(synth.calls[0], "..."))
}

func TestService_GenerateFailuresYieldNoAudio(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/media/")
	require.NoError(t, err)
	svc := NewService(&fakeSynth{err: errors.New("quota")}, store, "fr", 0, nil)

	assert.Empty(t, svc.Generate(context.Background(), "Bonjour"))
	assert.Empty(t, svc.Generate(context.Background(), "  ** ## "))

	entries, err := os.ReadDir(filepath.Join(dir, "audio"))
	require.NoError(t, err)
	assert.Empty(t, entries)

	var nilSvc *Service
	assert.Empty(t, nilSvc.Generate(context.Background(), "Bonjour"))
}

func TestSplitChunks(t *testing.T) {
	assert.Nil(t, splitChunks("   ", 10))
	assert.Equal(t, []string{"un deux", "trois"}, splitChunks("un deux trois", 8))
	assert.Equal(t, []string{"abcde", "fgh", "ij"}, splitChunks("abcdefgh ij", 5))

	for _, c := range splitChunks(strings.Repeat("Ouagadougou est la capitale. ", 20), maxChunkRunes) {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), maxChunkRunes)
	}
}

func TestGoogleSynthesizer(t *testing.T) {
	var queries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fr", r.URL.Query().Get("tl"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		queries = append(queries, r.URL.Query().Get("q"))
		w.Write([]byte("[" + r.URL.Query().Get("idx") + "]"))
	}))
	defer srv.Close()

	g := NewGoogleSynthesizer(0)
	g.baseURL = srv.URL

	text := strings.Repeat("mot ", 40)
	data, err := g.Synthesize(context.Background(), text, "fr")
	require.NoError(t, err)
	assert.Len(t, queries, 2)
	assert.Equal(t, "[0][1]", string(data))
}

func TestGoogleSynthesizer_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGoogleSynthesizer(0)
	g.baseURL = srv.URL
	_, err := g.Synthesize(context.Background(), "bonjour", "fr")
	assert.ErrorContains(t, err, "unexpected status code: 429")

	_, err = g.Synthesize(context.Background(), "", "fr")
	assert.Error(t, err)
}
