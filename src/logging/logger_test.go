package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitSetsLevel(t *testing.T) {
	logger := Init("debug")
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.Same(t, logger, zap.L())

	logger = Init("nonsense")
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestIsRateLimit(t *testing.T) {
	assert.False(t, IsRateLimit(nil))
	assert.True(t, IsRateLimit(errors.New("status 429: slow down")))
	assert.True(t, IsRateLimit(errors.New("rate_limit exceeded")))
	assert.False(t, IsRateLimit(errors.New("connection refused")))
}
