package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/genie/internal/config"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: format})
		require.NoError(t, err, "format %q", format)
		assert.NotNil(t, logger)
	}
}

func TestNewLogger_LevelIsApplied(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "trace", Format: "json"})
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	_, err := NewLogger(config.LoggingConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}

func TestNewLogger_RootName(t *testing.T) {
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.Equal(t, "genie", logger.Name())
}

func TestFor_NamesComponent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	root := zap.New(core).Named("genie")

	For(root, ComponentReader).Debug("read record")
	For(root, ComponentImporter).Info("wrote section")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "genie.reader", entries[0].LoggerName)
	assert.Equal(t, "genie.importer", entries[1].LoggerName)
}

func TestFor_NilLoggerIsNop(t *testing.T) {
	l := For(nil, ComponentStore)
	require.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}
