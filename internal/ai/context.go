package ai

import "context"

type contextKey string

const purposeKey contextKey = "ai_purpose"

// WithPurpose labels the calls made with ctx for logging ("lesson", "chat", ...).
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}
