package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/CheickOuedraogo/tuteur-backend/internal/apperr"
	"github.com/CheickOuedraogo/tuteur-backend/internal/logger"
)

// Call is one text-generation request made through the Gateway.
type Call struct {
	Prompt  string
	Classe  string
	Context string

	// MaxTokens overrides the gateway default when positive.
	MaxTokens int
}

// GatewayOptions holds generation defaults.
type GatewayOptions struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Gateway formats prompts for the tutor and maps provider failures onto the
// application error taxonomy.
type Gateway struct {
	provider Provider
	opts     GatewayOptions
	log      *logger.Logger
}

// NewGateway creates a gateway. A nil provider yields a gateway whose calls
// fail with a configuration error.
func NewGateway(provider Provider, opts GatewayOptions, log *logger.Logger) *Gateway {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 2000
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.7
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Gateway{provider: provider, opts: opts, log: log}
}

// Configured reports whether a provider is available.
func (g *Gateway) Configured() bool {
	return g != nil && g.provider != nil
}

// Generate returns the model's reply. A missing credential yields a
// KindAIConfiguration error; any provider failure yields KindAIService.
func (g *Gateway) Generate(ctx context.Context, call Call) (string, error) {
	if !g.Configured() {
		if g != nil {
			g.log.Error("ai provider not configured", "classe", call.Classe)
		}
		return "", apperr.Wrap(apperr.KindAIConfiguration, "Clé API IA non configurée.", ErrNotConfigured)
	}

	maxTokens := g.opts.MaxTokens
	if call.MaxTokens > 0 {
		maxTokens = call.MaxTokens
	}
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	resp, err := g.provider.Generate(ctx, Request{
		System:      SystemPrompt(call.Classe, call.Context),
		Messages:    []Message{{Role: RoleUser, Content: call.Prompt}},
		MaxTokens:   maxTokens,
		Temperature: g.opts.Temperature,
	})
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return "", apperr.Wrap(apperr.KindAIConfiguration, "Clé API IA non configurée.", err)
		}
		return "", apperr.Wrap(apperr.KindAIService, "", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// GenerateSafe is Generate with every failure replaced by def.
func (g *Gateway) GenerateSafe(ctx context.Context, call Call, def string) string {
	text, err := g.Generate(ctx, call)
	if err != nil {
		if g == nil {
			return def
		}
		g.log.Warn("ai generation fell back to default", "classe", call.Classe, "error", err)
		return def
	}
	return text
}

// GenerateList asks for a JSON list and returns its items. Generation or
// parse failures yield an empty result.
func (g *Gateway) GenerateList(ctx context.Context, call Call) []json.RawMessage {
	reply := g.GenerateSafe(ctx, call, "")
	if reply == "" {
		return nil
	}
	items, err := ExtractJSONList(reply)
	if err != nil {
		g.log.Warn("ai reply held no usable JSON", "purpose", PurposeFrom(ctx), "error", err, "reply_head", head(reply, 300))
		return nil
	}
	return items
}

// GenerateObject asks for a single JSON object. Failures yield nil.
func (g *Gateway) GenerateObject(ctx context.Context, call Call) json.RawMessage {
	items := g.GenerateList(ctx, call)
	if len(items) == 0 {
		return nil
	}
	return items[0]
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
