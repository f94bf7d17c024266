package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// Synthesizer turns text into MP3 bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

const (
	googleTTSURL = "https://translate.google.com/translate_tts"

	// maxChunkRunes is the longest text the translate endpoint accepts per request.
	maxChunkRunes = 100
)

// GoogleSynthesizer uses Google Translate's text-to-speech endpoint, which
// needs no API key. Long text is sent in chunks and the MP3 frames are
// concatenated.
type GoogleSynthesizer struct {
	client  *http.Client
	baseURL string
}

// NewGoogleSynthesizer creates a synthesizer whose requests time out after timeout.
func NewGoogleSynthesizer(timeout time.Duration) *GoogleSynthesizer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GoogleSynthesizer{
		client:  &http.Client{Timeout: timeout},
		baseURL: googleTTSURL,
	}
}

func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	chunks := splitChunks(text, maxChunkRunes)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("nothing to synthesize")
	}

	var out bytes.Buffer
	for i, chunk := range chunks {
		if err := g.fetch(ctx, &out, chunk, lang, i, len(chunks)); err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return out.Bytes(), nil
}

func (g *GoogleSynthesizer) fetch(ctx context.Context, w io.Writer, text, lang string, idx, total int) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", lang)
	params.Set("client", "tw-ob")
	params.Set("total", fmt.Sprintf("%d", total))
	params.Set("idx", fmt.Sprintf("%d", idx))
	params.Set("textlen", fmt.Sprintf("%d", utf8.RuneCountInString(text)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// Google rejects requests without a browser user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to read audio: %w", err)
	}
	return nil
}

// splitChunks breaks text on whitespace into pieces of at most limit runes.
// Words longer than limit are cut.
func splitChunks(text string, limit int) []string {
	var (
		chunks  []string
		current strings.Builder
		n       int
	)
	flush := func() {
		if n > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			n = 0
		}
	}

	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > limit {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:limit]))
			word = string(runes[limit:])
		}
		wl := utf8.RuneCountInString(word)
		if n > 0 && n+1+wl > limit {
			flush()
		}
		if n > 0 {
			current.WriteByte(' ')
			n++
		}
		current.WriteString(word)
		n += wl
	}
	flush()
	return chunks
}
