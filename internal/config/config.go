package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot transport settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
}

// QuizConfig tunes the quiz flow.
type QuizConfig struct {
	QuestionsFile string `yaml:"questions_file" envconfig:"QUIZ_QUESTIONS_FILE"`
	// AnswerDelayMS is the pause between answer feedback and the next question.
	AnswerDelayMS int `yaml:"answer_delay_ms" envconfig:"QUIZ_ANSWER_DELAY_MS"`
	// RankedMinimum is the smallest quiz length eligible for the leaderboard.
	RankedMinimum int `yaml:"ranked_minimum" envconfig:"QUIZ_RANKED_MINIMUM"`
}

// LeaderboardConfig selects and configures the leaderboard backend.
type LeaderboardConfig struct {
	Backend string `yaml:"backend" envconfig:"LEADERBOARD_BACKEND"`
	File    string `yaml:"file" envconfig:"LEADERBOARD_FILE"`
}

// DatabaseConfig holds Postgres settings for the database leaderboard backend.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// BackendFile persists the leaderboard to a local JSON file.
	BackendFile = "file"
	// BackendPostgres persists the leaderboard to Postgres.
	BackendPostgres = "postgres"
)

const (
	defaultAnswerDelayMS = 1500
	defaultRankedMin     = 10
	defaultQuestionsFile = "questions.json"
	defaultBoardFile     = "leaderboard.json"
)

// Config aggregates the whole bot configuration.
type Config struct {
	Telegram    TelegramConfig    `yaml:"telegram"`
	Webhook     WebhookConfig     `yaml:"webhook"`
	Logging     LoggingConfig     `yaml:"logging"`
	Quiz        QuizConfig        `yaml:"quiz"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Database    DatabaseConfig    `yaml:"database"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if cfg.Quiz.AnswerDelayMS < 0 {
		return fmt.Errorf("quiz.answer_delay_ms must be >= 0")
	}
	if cfg.Quiz.AnswerDelayMS == 0 {
		cfg.Quiz.AnswerDelayMS = defaultAnswerDelayMS
	}
	if cfg.Quiz.RankedMinimum < 0 {
		return fmt.Errorf("quiz.ranked_minimum must be >= 0")
	}
	if cfg.Quiz.RankedMinimum == 0 {
		cfg.Quiz.RankedMinimum = defaultRankedMin
	}
	if strings.TrimSpace(cfg.Quiz.QuestionsFile) == "" {
		cfg.Quiz.QuestionsFile = defaultQuestionsFile
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Leaderboard.Backend))
	if backend == "" {
		backend = BackendFile
	}
	switch backend {
	case BackendFile:
		if strings.TrimSpace(cfg.Leaderboard.File) == "" {
			cfg.Leaderboard.File = defaultBoardFile
		}
	case BackendPostgres:
		if strings.TrimSpace(cfg.Database.Host) == "" {
			return fmt.Errorf("database.host is required when leaderboard.backend is 'postgres'")
		}
		if strings.TrimSpace(cfg.Database.Name) == "" {
			return fmt.Errorf("database.name is required when leaderboard.backend is 'postgres'")
		}
		if cfg.Database.MaxConnections <= 0 {
			cfg.Database.MaxConnections = 4
		}
		if strings.TrimSpace(cfg.Database.SSLMode) == "" {
			cfg.Database.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("invalid leaderboard.backend %q; allowed: file, postgres", cfg.Leaderboard.Backend)
	}
	cfg.Leaderboard.Backend = backend

	return nil
}
