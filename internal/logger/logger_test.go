package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultIsNop(t *testing.T) {
	assert.NotPanics(t, func() { Info("nothing to see") })
}

func TestSetRoutesPackageHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := L()
	Set(zap.New(core))
	t.Cleanup(func() { Set(prev) })

	Debug("dropped")
	Warn("room locked", zap.Uint64("room_id", 4))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "room locked", entry.Message)
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, uint64(4), entry.ContextMap()["room_id"])
}

func TestInitFallsBackToInfo(t *testing.T) {
	prev := L()
	t.Cleanup(func() { Set(prev) })

	l, err := Init("dev", "not-a-level")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}
