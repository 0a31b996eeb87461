package utils

import (
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestSetupLogging(t *testing.T) {
	logger := SetupLogging("")
	assert.NotNil(t, logger)
	assert.Equal(t, logrus.InfoLevel, logger.Level)

	assert.Equal(t, logrus.DebugLevel, SetupLogging("debug").Level)
	assert.Equal(t, logrus.WarnLevel, SetupLogging("warn").Level)
	assert.Equal(t, logrus.ErrorLevel, SetupLogging("error").Level)

	// Invalid levels fall back to info
	assert.Equal(t, logrus.InfoLevel, SetupLogging("invalid").Level)
}

func TestSetupLoggingEnvFallback(t *testing.T) {
	t.Setenv("ITGLUE_LOG_LEVEL", "debug")
	assert.Equal(t, logrus.DebugLevel, SetupLogging("").Level)

	// The explicit parameter wins over the environment
	assert.Equal(t, logrus.WarnLevel, SetupLogging("warn").Level)
}

func TestGetEnvDefault(t *testing.T) {
	t.Setenv("ITGLUE_TEST_VAR", "from-env")
	assert.Equal(t, "from-env", GetEnvDefault("ITGLUE_TEST_VAR", "fallback"))

	os.Unsetenv("ITGLUE_TEST_VAR")
	assert.Equal(t, "fallback", GetEnvDefault("ITGLUE_TEST_VAR", "fallback"))
}
