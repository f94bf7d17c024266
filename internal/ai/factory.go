package ai

import (
	"context"
	"fmt"

	"github.com/CheickOuedraogo/tuteur-backend/internal/config"
	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
)

// NewProvider builds the provider selected by cfg, wrapped with retry and
// logging: caller → retry → logging → base. It returns ErrNotConfigured when
// the provider's credential is missing.
func NewProvider(ctx context.Context, cfg *config.Config, log *logger.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.AIProvider {
	case "groq", "":
		base, err = NewOpenAIProvider(cfg.AIAPIKey, cfg.AIModel, cfg.AIBaseURL)
	case "openai":
		base, err = NewOpenAIProvider(cfg.AIAPIKey, cfg.AIModel, cfg.AIBaseURL)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.AIAPIKey, cfg.AIModel)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.AIAPIKey, cfg.AIModel)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %q", cfg.AIProvider)
	}
	if err != nil {
		return nil, err
	}

	logged := WithLogging(base, log)
	return WithRetry(logged, DefaultRetryConfig(cfg.AIRetryAttempts)), nil
}
