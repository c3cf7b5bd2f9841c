package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/antrian-kiosk/antrian/internal/shared/config"
)

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server" yaml:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Ledger    sharedConfig.LedgerConfig    `mapstructure:"ledger" yaml:"ledger"`
	Ticket    sharedConfig.TicketConfig    `mapstructure:"ticket" yaml:"ticket"`
	Session   sharedConfig.SessionConfig   `mapstructure:"session" yaml:"session"`
	Kiosk     sharedConfig.KioskConfig     `mapstructure:"kiosk" yaml:"kiosk"`
	Events    sharedConfig.EventsConfig    `mapstructure:"events" yaml:"events"`
	RateLimit sharedConfig.RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
	Migration sharedConfig.MigrationConfig `mapstructure:"migration" yaml:"migration"`
}

// legacyEnvBindings lets the Google-style variable names work alongside the
// ANTRIAN_ prefixed ones.
var legacyEnvBindings = map[string][]string{
	"ledger.sheets.service_account_email": {"ANTRIAN_LEDGER_SHEETS_SERVICE_ACCOUNT_EMAIL", "GOOGLE_SERVICE_ACCOUNT_EMAIL"},
	"ledger.sheets.private_key":           {"ANTRIAN_LEDGER_SHEETS_PRIVATE_KEY", "GOOGLE_PRIVATE_KEY"},
	"ledger.store_id":                     {"ANTRIAN_LEDGER_STORE_ID", "GOOGLE_SHEET_ID"},
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// configPath may be empty, in which case the usual ./configs locations are
// searched. A missing config file is not an error.
func Load(env, configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("ANTRIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, envs := range legacyEnvBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Allow env parameter to override server mode if provided
	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// PEM keys pasted into a single env var usually carry literal \n.
	config.Ledger.Sheets.PrivateKey = strings.ReplaceAll(config.Ledger.Sheets.PrivateKey, `\n`, "\n")

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.timezone", "Asia/Jayapura")
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "antrian")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("ledger.driver", sharedConfig.LedgerDriverSheets)
	v.SetDefault("ledger.store_id", "")
	v.SetDefault("ledger.range", "tembagapura!A:B")
	v.SetDefault("ledger.header_rows", 1)
	v.SetDefault("ledger.timeout_seconds", 10)
	v.SetDefault("ledger.sheets.service_account_email", "")
	v.SetDefault("ledger.sheets.private_key", "")
	v.SetDefault("ledger.sheets.endpoint", "")

	v.SetDefault("ticket.strict_sequence", false)
	v.SetDefault("ticket.max_conflict_retries", 3)
	v.SetDefault("ticket.require_sequential_numbers", false)

	v.SetDefault("session.cookie_name", "patient_ticket")
	v.SetDefault("session.ttl_seconds", 3600)
	v.SetDefault("session.path", "/")
	v.SetDefault("session.domain", "")
	v.SetDefault("session.secure", false)
	v.SetDefault("session.same_site", "Lax")

	v.SetDefault("kiosk.server_url", "http://localhost:8080")
	v.SetDefault("kiosk.mode", "manual")
	v.SetDefault("kiosk.display_seconds", 10)

	v.SetDefault("events.driver", sharedConfig.EventsDriverNone)
	v.SetDefault("events.channel", "antrian:ticket:issued")
	v.SetDefault("events.publish_timeout_ms", 2000)
	v.SetDefault("events.kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("events.kafka.topic", "antrian.ticket.issued")

	v.SetDefault("rate_limit.enabled", false)
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window_seconds", 60)

	v.SetDefault("migration.strategy", "goose")
}
