package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	in := []interface{}{"user", "awa", "password", "hunter2", "Authorization", "Bearer x", "dangling"}
	got := sanitizeKVs(in)

	want := []interface{}{"user", "awa", "password", "[REDACTED]", "Authorization", "[REDACTED]", "dangling"}
	assert.Equal(t, want, got)
}

func TestLoggerWritesRedactedFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core)).With("component", "test")

	log.Warn("login failed", "username", "awa", "api_key", "gsk_123")

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "login failed", entries[0].Message)
	assert.Equal(t, "test", fields["component"])
	assert.Equal(t, "awa", fields["username"])
	assert.Equal(t, "[REDACTED]", fields["api_key"])
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"dev", "prod"} {
		t.Run(mode, func(t *testing.T) {
			l, err := New(mode)
			require.NoError(t, err)
			require.NotNil(t, l.SugaredLogger)
		})
	}
}
