package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	AdminUserID      int64  `env:"ADMIN_USER"`
	PollTimeout      int    `env:"POLL_TIMEOUT" envDefault:"60"`
	Debug            bool   `env:"DEBUG" envDefault:"false"`

	// Storage
	ExportPath  string `env:"EXPORT_PATH" envDefault:"data/все_интервью.xlsx"`
	JournalPath string `env:"JOURNAL_PATH" envDefault:"data/interviews.jsonl"`

	// Questionnaire overrides (YAML with pain_points / emotions)
	QuestionnairePath string `env:"QUESTIONNAIRE_PATH"`

	// Observability
	MetricsEnabled bool   `env:"METRICS_ENABLED" envDefault:"true"`
	MetricsAddr    string `env:"METRICS_ADDR" envDefault:":2112"`
	StatsCron      string `env:"STATS_CRON" envDefault:"0 21 * * *"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string `env:"LOG_FORMAT" envDefault:"text"`
}

// Parse reads the configuration from the environment.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
