package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	l, err := New(false)
	require.NoError(t, err)
	assert.False(t, l.Desugar().Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Desugar().Core().Enabled(zap.WarnLevel))

	l, err = New(true)
	require.NoError(t, err)
	assert.True(t, l.Desugar().Core().Enabled(zap.DebugLevel))
}

func TestInitLogger_SetsGlobal(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	l, err := InitLogger(true)
	require.NoError(t, err)
	assert.Same(t, l, Logger)
}
