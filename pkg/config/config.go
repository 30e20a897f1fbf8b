package config

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	ServerPort string `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	// PostgresURL wins over the individual POSTGRES_* parts when set.
	PostgresURL      string `mapstructure:"POSTGRES_URL"`
	PostgresHost     string `mapstructure:"POSTGRES_HOST"`
	PostgresPort     string `mapstructure:"POSTGRES_PORT"`
	PostgresUser     string `mapstructure:"POSTGRES_USER"`
	PostgresPassword string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresDB       string `mapstructure:"POSTGRES_DB"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	QueueKey        string        `mapstructure:"QUEUE_KEY"`
	ProcessedSetKey string        `mapstructure:"PROCESSED_SET_KEY"`
	DedupTTL        time.Duration `mapstructure:"DEDUP_TTL"`
	DequeuePoll     time.Duration `mapstructure:"DEQUEUE_POLL"`

	FetchTimeout time.Duration `mapstructure:"FETCH_TIMEOUT"`
	MaxRedirects int           `mapstructure:"MAX_REDIRECTS"`
	UserAgent    string        `mapstructure:"USER_AGENT"`
	// ProxyURLs is a comma-separated list in the environment.
	ProxyURLs []string `mapstructure:"PROXY_URLS"`

	ErrorBackoff    time.Duration `mapstructure:"ERROR_BACKOFF"`
	RevalidateAfter time.Duration `mapstructure:"REVALIDATE_AFTER"`
}

// Load reads configuration from an optional file, a local .env file and
// environment variables, in increasing order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigFile(".env")
		v.SetConfigType("env")
		// Attempt to read the .env file, but don't fail if it's not present.
		_ = v.ReadInConfig()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "user")
	v.SetDefault("POSTGRES_PASSWORD", "password")
	v.SetDefault("POSTGRES_DB", "aura")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("QUEUE_KEY", "analysis_queue")
	v.SetDefault("PROCESSED_SET_KEY", "processed_urls")
	v.SetDefault("DEDUP_TTL", 600*time.Second)
	v.SetDefault("DEQUEUE_POLL", 5*time.Second)
	v.SetDefault("FETCH_TIMEOUT", 15*time.Second)
	v.SetDefault("MAX_REDIRECTS", 5)
	v.SetDefault("USER_AGENT", "WAI-Bot/1.0")
	v.SetDefault("PROXY_URLS", []string{})
	v.SetDefault("ERROR_BACKOFF", 3*time.Second)
	v.SetDefault("REVALIDATE_AFTER", 30*24*time.Hour)
}

// Validate checks required values and limits.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "warning", "error")),
		validation.Field(&c.RedisAddr, validation.Required),
		validation.Field(&c.QueueKey, validation.Required),
		validation.Field(&c.ProcessedSetKey, validation.Required),
		validation.Field(&c.DedupTTL, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.DequeuePoll, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.FetchTimeout, validation.Required),
		validation.Field(&c.MaxRedirects, validation.Min(0)),
		validation.Field(&c.UserAgent, validation.Required),
		validation.Field(&c.RevalidateAfter, validation.Required),
	)
}

// PostgresDSN returns the connection string for the relational store.
func (c *Config) PostgresDSN() string {
	if c.PostgresURL != "" {
		return c.PostgresURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB)
}
