package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrMissingEnvironmentVariables = errors.New("missing required environment variables")

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env      string   `mapstructure:"env"`       // current application environment (local, dev, prod etc)
	HTTPAddr string   `mapstructure:"http_addr"` // listen address of the HTTP server
	QuranAPI QuranAPI `mapstructure:"quran_api"` // verse source configuration section
	Sheets   Sheets   `mapstructure:"sheets"`    // remote player/config service section
	Redis    Redis    `mapstructure:"redis"`     // optional page cache section
	Quiz     Quiz     `mapstructure:"quiz"`      // quiz pacing section
}

// QuranAPI contains verse source parameters.
type QuranAPI struct {
	BaseURL string        `mapstructure:"base_url"` // alquran.cloud API base URL
	Timeout time.Duration `mapstructure:"timeout"`  // per-request timeout
}

// Sheets contains parameters of the spreadsheet-backed player/config service.
type Sheets struct {
	ScriptURL string        `mapstructure:"-"`       // web-app endpoint loaded from environment
	Timeout   time.Duration `mapstructure:"timeout"` // per-request timeout
}

// Redis contains page cache parameters. An empty address disables the cache.
type Redis struct {
	Addr    string        `mapstructure:"addr"`
	PageTTL time.Duration `mapstructure:"page_ttl"` // how long fetched pages stay cached
}

// Quiz contains session pacing parameters.
type Quiz struct {
	FeedbackDelay time.Duration `mapstructure:"feedback_delay"` // how long answer feedback stays on screen
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// Initialize Viper instance and base config options.
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("quran_api.base_url", "https://api.alquran.cloud/v1")
	v.SetDefault("quran_api.timeout", "10s")
	v.SetDefault("sheets.timeout", "15s")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.page_ttl", "12h")
	v.SetDefault("quiz.feedback_delay", "3s")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("sheets_script_url", "SHEETS_SCRIPT_URL")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("env", "APP_ENV")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.Sheets.ScriptURL = v.GetString("sheets_script_url")
	if cfg.Sheets.ScriptURL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	return &cfg, nil
}
