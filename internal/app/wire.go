// Package app wires infrastructure shared by the server and the fasoctl
// tool: database, AI gateway, audio narration and rate limiting.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/CheickOuedraogo/tuteur-backend/internal/ai"
	"github.com/CheickOuedraogo/tuteur-backend/internal/audio"
	"github.com/CheickOuedraogo/tuteur-backend/internal/config"
	"github.com/CheickOuedraogo/tuteur-backend/internal/curriculum"
	"github.com/CheickOuedraogo/tuteur-backend/internal/database"
	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
	"github.com/CheickOuedraogo/tuteur-backend/internal/security"
	"github.com/CheickOuedraogo/tuteur-backend/migrations"
)

// MigrationsFS returns the on-disk migrations when MIGRATIONS_PATH is set,
// otherwise the embedded ones.
func MigrationsFS(cfg *config.Config) fs.FS {
	if cfg.MigrationsPath != "" {
		return os.DirFS(cfg.MigrationsPath)
	}
	return migrations.FS
}

// OpenDatabase connects to the configured database and applies pending
// migrations.
func OpenDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.DB, error) {
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	log.Info("database connection established", "type", db.Dialect.Name())

	applied, err := db.RunMigrations(ctx, MigrationsFS(cfg))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if len(applied) > 0 {
		log.Info("migrations applied", "files", applied)
	}
	return db, nil
}

// NewGateway builds the AI gateway. A missing credential leaves the gateway
// unconfigured: generation calls then fail with a configuration error and
// callers fall back to static content.
func NewGateway(ctx context.Context, cfg *config.Config, log *logger.Logger) (*ai.Gateway, error) {
	provider, err := ai.NewProvider(ctx, cfg, log)
	if errors.Is(err, ai.ErrNotConfigured) {
		log.Warn("AI provider not configured, generated content disabled", "provider", cfg.AIProvider)
		provider = nil
	} else if err != nil {
		return nil, err
	}
	return ai.NewGateway(provider, ai.GatewayOptions{
		MaxTokens:   cfg.AIMaxTokens,
		Temperature: cfg.AITemperature,
		Timeout:     cfg.AITimeout,
	}, log), nil
}

// AIPolicy returns the grade policy from CLASSES_SANS_IA.
func AIPolicy(cfg *config.Config) curriculum.AIPolicy {
	return curriculum.NewAIPolicy(cfg.ClassesSansIA)
}

// Narrator is the audio service together with the resources it holds.
type Narrator struct {
	*audio.Service
	// LocalRoot is the media directory to serve, empty for remote stores.
	LocalRoot string
	closer    io.Closer
}

func (n *Narrator) Close() error {
	if n.closer == nil {
		return nil
	}
	return n.closer.Close()
}

// NewNarrator builds text-to-speech narration backed by the configured
// audio store.
func NewNarrator(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Narrator, error) {
	synth := audio.NewGoogleSynthesizer(cfg.TTSTimeout)

	switch cfg.AudioStore {
	case "gcs":
		store, err := audio.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredsJSON, cfg.GCSPublicURL)
		if err != nil {
			return nil, fmt.Errorf("init gcs audio store: %w", err)
		}
		log.Info("audio stored in GCS", "bucket", cfg.GCSBucket)
		return &Narrator{
			Service: audio.NewService(synth, store, cfg.TTSLanguage, cfg.TTSMaxChars, log),
			closer:  store,
		}, nil
	case "local", "":
		store, err := audio.NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
		if err != nil {
			return nil, err
		}
		return &Narrator{
			Service:   audio.NewService(synth, store, cfg.TTSLanguage, cfg.TTSMaxChars, log),
			LocalRoot: cfg.MediaRoot,
		}, nil
	default:
		return nil, fmt.Errorf("unknown audio store: %q", cfg.AudioStore)
	}
}

// Limiter is a rate limiter that holds resources.
type Limiter interface {
	security.Limiter
	Close() error
}

type memoryLimiter struct {
	*security.RateLimiter
}

func (m memoryLimiter) Close() error {
	m.RateLimiter.Close()
	return nil
}

// NewLimiter returns a Redis-backed limiter when REDIS_URL is set, an
// in-process one otherwise. An unreachable Redis falls back to memory.
func NewLimiter(ctx context.Context, cfg *config.Config, rate int, log *logger.Logger) Limiter {
	if cfg.RedisURL != "" {
		rl, err := security.NewRedisRateLimiter(ctx, cfg.RedisURL, rate, cfg.ChatRateWindow)
		if err == nil {
			return rl
		}
		log.Warn("redis unavailable, using in-memory rate limiting", "error", err)
	}
	return memoryLimiter{security.NewRateLimiter(rate, cfg.ChatRateWindow)}
}
