package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DBPath        string        `mapstructure:"DB_PATH"`
	TelegramToken string        `mapstructure:"TELEGRAM_BOT_TOKEN"`
	ReminderAt    string        `mapstructure:"REMINDER_AT"` // "HH:MM", host local time
	BibleAPIURL   string        `mapstructure:"BIBLE_API_URL"`
	FetchTimeout  time.Duration `mapstructure:"FETCH_TIMEOUT"`
	LogDir        string        `mapstructure:"LOG_DIR"`
	Debug         bool          `mapstructure:"DEBUG"`
}

const (
	DBName        = "bible_bot.db"
	logDir        = "logs"
	secretPath    = "/run/secrets/telegram_bot_token"
	defaultAPIURL = "https://bible-api.com"
)

var ErrNoToken = errors.New("telegram token not found: set TELEGRAM_BOT_TOKEN or the telegram_bot_token docker secret")

// Load reads .env (if present) and the environment. The token is only
// required when requireToken is set, so offline commands work without it.
func Load(requireToken bool) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("DB_PATH", DBName)
	v.SetDefault("REMINDER_AT", "08:00")
	v.SetDefault("BIBLE_API_URL", defaultAPIURL)
	v.SetDefault("FETCH_TIMEOUT", 15*time.Second)
	v.SetDefault("LOG_DIR", logDir)
	v.SetDefault("DEBUG", false)
	v.SetDefault("TELEGRAM_BOT_TOKEN", "")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if _, err := time.Parse("15:04", cfg.ReminderAt); err != nil {
		return Config{}, fmt.Errorf("invalid REMINDER_AT %q: want HH:MM", cfg.ReminderAt)
	}

	cfg.TelegramToken = getBotToken(cfg.TelegramToken)
	if requireToken && cfg.TelegramToken == "" {
		return Config{}, ErrNoToken
	}
	return cfg, nil
}

// getBotToken prefers the docker secret, then TELEGRAM_BOT_TOKEN, then the
// legacy BOT_TOKEN variable.
func getBotToken(fromEnv string) string {
	if data, err := os.ReadFile(secretPath); err == nil {
		token := strings.TrimSpace(string(data))
		if token != "" {
			return token
		}
	}
	if token := strings.TrimSpace(fromEnv); token != "" {
		return token
	}
	return strings.TrimSpace(os.Getenv("BOT_TOKEN"))
}

// ReminderClock splits ReminderAt into hour and minute.
func (c Config) ReminderClock() (hour, minute uint) {
	t, err := time.Parse("15:04", c.ReminderAt)
	if err != nil {
		return 8, 0
	}
	return uint(t.Hour()), uint(t.Minute())
}
