package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaultsWhenUnset(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("TM_LOG_LEVEL")
	os.Unsetenv("MTGCORE_EVENTLOG_DIR")

	c := Load()
	assert.Equal(t, "3001", c.Port)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.EventLogDir)
}

func TestLoadReadsOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("TM_LOG_LEVEL", "debug")
	t.Setenv("MTGCORE_MAX_GAME_IDLE_MS", "5000")

	c := Load()
	assert.Equal(t, "9000", c.Port)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 5000, c.MaxGameIdleMS)
}

func TestLoadIgnoresUnparseableInt(t *testing.T) {
	t.Setenv("MTGCORE_MAX_GAME_IDLE_MS", "not-a-number")
	c := Load()
	assert.Equal(t, 0, c.MaxGameIdleMS)
}
