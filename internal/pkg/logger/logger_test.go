package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefaultLoggerWritesBeforeInit(t *testing.T) {
	l := FromContext(context.Background())
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.ErrorLevel))
}

func TestWith_CarriesFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := global
	Set(zap.New(core))
	t.Cleanup(func() { Set(prev) })

	ctx := With(context.Background(), zap.String("run_id", "r1"))
	Info(ctx, "hello")
	Debugf(ctx, "dropped")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "hello", entries[0].Message)
		assert.Equal(t, "r1", entries[0].ContextMap()["run_id"])
	}
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	prev := global
	t.Cleanup(func() { Set(prev) })

	assert.NoError(t, Init("loud"))
	assert.True(t, global.Core().Enabled(zap.InfoLevel))
	assert.False(t, global.Core().Enabled(zap.DebugLevel))
}
