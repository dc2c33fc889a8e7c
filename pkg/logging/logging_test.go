package logging

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	tl := NewTestLogger(t)
	ctx := WithLogger(context.Background(), tl.Logger)

	got := FromContext(ctx)
	require.NotNil(t, got)

	got.Info().Msg("hello from context")
	assert.True(t, tl.Contains("hello from context"))
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Equal(t, Default(), FromContext(context.Background()))
	assert.Equal(t, Default(), FromContext(nil)) //nolint:staticcheck // nil context fallback is part of the API
}

func TestWithBundleField(t *testing.T) {
	tl := NewTestLogger(t)
	ctx := WithLogger(context.Background(), tl.Logger)
	ctx = WithBundle(ctx, "widget")
	ctx = WithDimension(ctx, "resource")

	Ctx(ctx).Debug().Msg("scoped")

	assert.True(t, tl.Contains(`"bundle":"widget"`))
	assert.True(t, tl.Contains(`"dimension":"resource"`))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), "level %q", tt.in)
	}
}

func TestNewLoggerFromConfigNil(t *testing.T) {
	// nil config must not panic and should produce a usable logger
	logger := NewLoggerFromConfig(nil)
	logger.Info().Msg("ok")
}
