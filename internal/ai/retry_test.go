package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond, Multiplier: 2}
}

func TestWithRetry_RecoversFromTransientError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrProviderUnavailable{}},
		MockResponse{Text: "ok"},
	)
	resp, err := WithRetry(mock, fastRetry(3)).Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, 2, mock.CallCount())
}

func TestWithRetry_StopsOnPermanentError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"not configured", ErrNotConfigured},
		{"invalid response", &ErrInvalidResponse{Err: errors.New("bad")}},
		{"canceled", context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(MockResponse{Err: tt.err}, MockResponse{Text: "unused"})
			_, err := WithRetry(mock, fastRetry(3)).Generate(context.Background(), Request{})
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1, mock.CallCount())
		})
	}
}

func TestWithRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{}},
		MockResponse{Err: &ErrRateLimit{}},
		MockResponse{Text: "too late"},
	)
	_, err := WithRetry(mock, fastRetry(2)).Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	assert.True(t, errors.As(err, &rl))
	assert.Equal(t, 2, mock.CallCount())
}

func TestBackoff_HonoursRetryAfter(t *testing.T) {
	r := &RetryProvider{config: DefaultRetryConfig(3)}
	assert.Equal(t, 3*time.Second, r.backoff(0, &ErrRateLimit{RetryAfter: 3 * time.Second}))

	wait := r.backoff(10, errors.New("boom"))
	assert.LessOrEqual(t, wait, 6*time.Second)
	assert.GreaterOrEqual(t, wait, 4*time.Second)
}
