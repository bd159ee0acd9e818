package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			lvl := parseLevel(tt.in)
			require.NotNil(t, lvl)
			assert.Equal(t, tt.want, *lvl)
		})
	}

	assert.Nil(t, parseLevel("verbose"))
}

func TestNew(t *testing.T) {
	for _, pretty := range []bool{true, false} {
		l, err := New("warn", pretty)
		require.NoError(t, err)
		require.NotNil(t, l)
	}
}

func TestFromZapFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := FromZap(zap.New(core)).With(String("component", "test"))

	l.Info("clip created", Int64("id", 7), Error(errors.New("boom")))
	l.Warnf("queue at %d%%", 90)

	entries := logs.All()
	require.Len(t, entries, 2)

	ctx := entries[0].ContextMap()
	assert.Equal(t, "clip created", entries[0].Message)
	assert.Equal(t, "test", ctx["component"])
	assert.Equal(t, int64(7), ctx["id"])
	assert.Equal(t, "boom", ctx["error"])
	assert.Equal(t, "queue at 90%", entries[1].Message)
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("discarded")
	assert.NoError(t, l.Sync())
}
