package ai

import (
	"context"
	"time"

	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
)

// LoggingProvider is a decorator that logs every model call.
type LoggingProvider struct {
	inner Provider
	log   *logger.Logger
}

// WithLogging wraps a Provider with structured call logging.
func WithLogging(p Provider, log *logger.Logger) Provider {
	return &LoggingProvider{inner: p, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	kv := []interface{}{
		"model", l.inner.ModelID(),
		"purpose", PurposeFrom(ctx),
		"latency_ms", time.Since(start).Milliseconds(),
		"max_tokens", req.MaxTokens,
	}
	if err != nil {
		l.log.Warn("ai call failed", append(kv, "error", err)...)
		return nil, err
	}
	l.log.Info("ai call completed", append(kv,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"chars", len(resp.Text),
		"stop_reason", resp.StopReason,
	)...)
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
