// Package audio turns tutor text into cached MP3 narration.
package audio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
)

// DefaultMaxChars bounds the text sent for synthesis.
const DefaultMaxChars = 800

var (
	emphasisRe = regexp.MustCompile(`\*+`)
	headingRe  = regexp.MustCompile(`#+\s*`)
)

// Service generates narration for text. Files are content addressed, so
// identical text is synthesized once.
type Service struct {
	synth    Synthesizer
	store    Store
	lang     string
	maxChars int
	log      *logger.Logger
}

// NewService creates an audio service.
func NewService(synth Synthesizer, store Store, lang string, maxChars int, log *logger.Logger) *Service {
	if lang == "" {
		lang = "fr"
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{synth: synth, store: store, lang: lang, maxChars: maxChars, log: log}
}

// CleanText strips markdown emphasis and heading markers so they are not read aloud.
func CleanText(text string) string {
	text = emphasisRe.ReplaceAllString(text, "")
	text = headingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// truncate keeps the first limit runes of text and marks the cut with "...".
func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + "..."
}

// FileName returns the content-addressed file name for already cleaned text.
func FileName(cleaned string) string {
	sum := sha256.Sum256([]byte(cleaned))
	return hex.EncodeToString(sum[:]) + ".mp3"
}

// Generate returns the URL of narration for text, synthesizing it if no file
// exists yet. Any failure yields an empty URL; audio is never required.
func (s *Service) Generate(ctx context.Context, text string) string {
	if s == nil || s.synth == nil || s.store == nil {
		return ""
	}
	cleaned := truncate(CleanText(text), s.maxChars)
	if cleaned == "" {
		return ""
	}

	name := FileName(cleaned)
	exists, err := s.store.Exists(ctx, name)
	if err != nil {
		s.log.Warn("audio cache lookup failed", "file", name, "error", err)
	}
	if exists {
		return s.store.URL(name)
	}

	data, err := s.synth.Synthesize(ctx, cleaned, s.lang)
	if err != nil {
		s.log.Error("audio synthesis failed", "file", name, "chars", utf8.RuneCountInString(cleaned), "error", err)
		return ""
	}
	if len(data) == 0 {
		s.log.Warn("audio synthesis returned no data", "file", name)
		return ""
	}
	if err := s.store.Put(ctx, name, data); err != nil {
		s.log.Error("audio store failed", "file", name, "error", err)
		return ""
	}

	s.log.Info("audio generated", "file", name, "bytes", len(data))
	return s.store.URL(name)
}
