// Package config provides configuration loading, validation, and defaults
// for the bot. Values come from built-in defaults, an optional YAML file, and
// BOT_ prefixed environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/viper"
)

// ErrConfiguration marks every failure to produce a usable configuration.
// The process must not start when LoadConfig returns it.
var ErrConfiguration = errors.New("configuration error")

// Config is the root configuration. It is built once at startup and treated
// as immutable afterwards, except for Telegram.BotInfo which main fills in
// from getMe before any handler runs.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	YouTube    YouTubeConfig    `mapstructure:"youtube"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Messages   MessagesConfig   `mapstructure:"messages"`
}

// LoggerConfig controls slog output.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds chat platform settings.
type TelegramConfig struct {
	Token          string        `mapstructure:"token"           validate:"required"`
	ChannelURL     string        `mapstructure:"channel_url"     validate:"omitempty,url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"min=1s,max=5m"`

	// BotInfo is populated at runtime from getMe.
	BotInfo *models.User `mapstructure:"-"`
}

// YouTubeConfig holds video search provider settings.
type YouTubeConfig struct {
	APIKey     string        `mapstructure:"api_key"     validate:"required"`
	BaseURL    string        `mapstructure:"base_url"    validate:"required,url"`
	MaxResults int           `mapstructure:"max_results" validate:"min=1,max=50"`
	MaxRetries int           `mapstructure:"max_retries" validate:"min=0,max=10"`
	Timeout    time.Duration `mapstructure:"timeout"     validate:"min=1s,max=5m"`
	CacheTTL   time.Duration `mapstructure:"cache_ttl"   validate:"min=0"`
}

// ModerationConfig is the raw policy input. The policy package turns it into
// compiled matchers.
type ModerationConfig struct {
	BannedWords        []string      `mapstructure:"banned_words"        validate:"required,min=1,dive,required"`
	SuspiciousPatterns []string      `mapstructure:"suspicious_patterns" validate:"dive,required"`
	WarningTTL         time.Duration `mapstructure:"warning_ttl"         validate:"min=1s,max=1h"`
}

// DatabaseConfig holds the search cache database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks      map[string]TaskConfig `mapstructure:"tasks"       validate:"dive"`
	JobTimeout time.Duration         `mapstructure:"job_timeout" validate:"min=1s"`
}

// TaskConfig configures a single recurring task. Schedule is a cron
// expression with a leading seconds field.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MessagesConfig holds user facing texts. Texts are sent with HTML parse
// mode. Welcome, Warning and Searching are templates with exactly one %s,
// filled with an escaped value; %% is a literal percent sign.
type MessagesConfig struct {
	Welcome         string `mapstructure:"welcome"          validate:"required,one_placeholder"`
	Help            string `mapstructure:"help"             validate:"required"`
	Warning         string `mapstructure:"warning"          validate:"required,one_placeholder"`
	SearchUsage     string `mapstructure:"search_usage"     validate:"required"`
	Searching       string `mapstructure:"searching"        validate:"required,one_placeholder"`
	NoResults       string `mapstructure:"no_results"       validate:"required"`
	SearchError     string `mapstructure:"search_error"     validate:"required"`
	GeneralError    string `mapstructure:"general_error"    validate:"required"`
	AddToGroupAck   string `mapstructure:"add_to_group_ack" validate:"required"`
	AddToGroupLabel string `mapstructure:"add_to_group"     validate:"required"`
	ChannelLabel    string `mapstructure:"channel"          validate:"required"`
	WatchLabel      string `mapstructure:"watch"            validate:"required"`
}

// LoadConfig reads configuration from the YAML file at path, layered over
// defaults and under BOT_* environment variables (BOT_TELEGRAM_TOKEN,
// BOT_YOUTUBE_API_KEY, BOT_MODERATION_BANNED_WORDS="a,b", ...). A missing file
// is not an error; an invalid result is.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: failed to read config file %q: %w", ErrConfiguration, path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("one_placeholder", func(fl validator.FieldLevel) bool {
		return hasOnePlaceholder(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("%w: failed to register validator: %w", ErrConfiguration, err)
	}

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return nil
}

// hasOnePlaceholder reports whether template has exactly one %s verb and no
// other verbs besides %%.
func hasOnePlaceholder(template string) bool {
	count := 0
	for i := 0; i < len(template); i++ {
		if template[i] != '%' {
			continue
		}
		if i+1 == len(template) {
			return false
		}
		i++
		switch template[i] {
		case '%':
		case 's':
			count++
		default:
			return false
		}
	}
	return count == 1
}
