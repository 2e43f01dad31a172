package logger

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_ProductionDefaultsToInfo(t *testing.T) {
	logger, err := New("production", "")
	require.NoError(t, err)
	defer logger.Sync()

	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNew_DevelopmentDefaultsToDebug(t *testing.T) {
	logger, err := New("development", "")
	require.NoError(t, err)
	defer logger.Sync()

	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New("production", "chatty")
	assert.Error(t, err)
}

func TestNewWithDefaults_ReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("LOG_LEVEL", "warn")

	logger := NewWithDefaults()
	defer logger.Sync()

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestNewWithDefaults_FallsBackOnBadLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "nonsense")

	logger := NewWithDefaults()
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

// An explicit level always wins over the environment default
func TestProperty_LevelOverrideIsHonoured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("configured level is the lowest enabled level", prop.ForAll(
		func(env string, level string) bool {
			logger, err := New(env, level)
			if err != nil {
				return false
			}
			defer logger.Sync()

			parsed, _ := zapcore.ParseLevel(level)
			if !logger.Core().Enabled(parsed) {
				return false
			}
			if parsed > zapcore.DebugLevel && logger.Core().Enabled(parsed-1) {
				return false
			}
			return true
		},
		gen.OneConstOf("production", "development"),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
