package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // no .env here
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("BOT_TOKEN", "")

	cfg, err := Load(false)
	require.NoError(t, err)
	assert.Equal(t, DBName, cfg.DBPath)
	assert.Equal(t, "08:00", cfg.ReminderAt)
	assert.Equal(t, defaultAPIURL, cfg.BibleAPIURL)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.False(t, cfg.Debug)

	h, m := cfg.ReminderClock()
	assert.Equal(t, uint(8), h)
	assert.Equal(t, uint(0), m)
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_BOT_TOKEN", " 123:abc ")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("REMINDER_AT", "21:30")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("DEBUG", "true")

	cfg, err := Load(true)
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.TelegramToken)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.Debug)

	h, m := cfg.ReminderClock()
	assert.Equal(t, uint(21), h)
	assert.Equal(t, uint(30), m)
}

func TestLegacyTokenVariable(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("BOT_TOKEN", "legacy")

	cfg, err := Load(true)
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.TelegramToken)
}

func TestLoadErrors(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("BOT_TOKEN", "")

	_, err := Load(true)
	assert.ErrorIs(t, err, ErrNoToken)

	t.Setenv("REMINDER_AT", "8am")
	_, err = Load(false)
	assert.Error(t, err)
}
