package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host" yaml:"host"`
	Port           int      `mapstructure:"port" yaml:"port"`
	Mode           string   `mapstructure:"mode" yaml:"mode"`
	Timezone       string   `mapstructure:"timezone" yaml:"timezone"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host" yaml:"host"`
	Port            int    `mapstructure:"port" yaml:"port"`
	Username        string `mapstructure:"username" yaml:"username"`
	Password        string `mapstructure:"password" yaml:"password" mask:"true"`
	Database        string `mapstructure:"database" yaml:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Password string `mapstructure:"password" yaml:"password" mask:"true"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// Ledger drivers.
const (
	LedgerDriverSheets = "sheets"
	LedgerDriverMySQL  = "mysql"
	LedgerDriverSQLite = "sqlite"
	LedgerDriverRedis  = "redis"
	LedgerDriverPebble = "pebble"
	LedgerDriverMemory = "memory"
)

// SheetsConfig holds the service account used to reach the spreadsheet.
type SheetsConfig struct {
	ServiceAccountEmail string `mapstructure:"service_account_email" yaml:"service_account_email"`
	PrivateKey          string `mapstructure:"private_key" yaml:"private_key" mask:"true"`
	// Endpoint overrides the Sheets API base URL.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

type LedgerConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	// StoreID identifies the ledger store: spreadsheet id, sqlite file,
	// pebble directory or redis list key depending on the driver.
	StoreID        string       `mapstructure:"store_id" yaml:"store_id"`
	Range          string       `mapstructure:"range" yaml:"range"`
	HeaderRows     int          `mapstructure:"header_rows" yaml:"header_rows"`
	TimeoutSeconds int          `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Sheets         SheetsConfig `mapstructure:"sheets" yaml:"sheets"`
}

func (l *LedgerConfig) Timeout() time.Duration {
	if l.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(l.TimeoutSeconds) * time.Second
}

type TicketConfig struct {
	// StrictSequence enables optimistic versioned appends on the computed
	// path when the ledger driver supports them.
	StrictSequence     bool `mapstructure:"strict_sequence" yaml:"strict_sequence"`
	MaxConflictRetries int  `mapstructure:"max_conflict_retries" yaml:"max_conflict_retries"`
	// RequireSequentialNumbers rejects free-text numbers on manual submission.
	RequireSequentialNumbers bool `mapstructure:"require_sequential_numbers" yaml:"require_sequential_numbers"`
}

type SessionConfig struct {
	CookieName string `mapstructure:"cookie_name" yaml:"cookie_name"`
	TTLSeconds int    `mapstructure:"ttl_seconds" yaml:"ttl_seconds"`
	Path       string `mapstructure:"path" yaml:"path"`
	Domain     string `mapstructure:"domain" yaml:"domain"`
	Secure     bool   `mapstructure:"secure" yaml:"secure"`
	SameSite   string `mapstructure:"same_site" yaml:"same_site"`
}

func (s *SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLSeconds) * time.Second
}

type KioskConfig struct {
	ServerURL      string `mapstructure:"server_url" yaml:"server_url"`
	Mode           string `mapstructure:"mode" yaml:"mode"`
	DisplaySeconds int    `mapstructure:"display_seconds" yaml:"display_seconds"`
}

// Event drivers.
const (
	EventsDriverNone  = "none"
	EventsDriverRedis = "redis"
	EventsDriverKafka = "kafka"
)

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers" yaml:"brokers"`
	Topic   string   `mapstructure:"topic" yaml:"topic"`
}

type EventsConfig struct {
	Driver           string      `mapstructure:"driver" yaml:"driver"`
	Channel          string      `mapstructure:"channel" yaml:"channel"`
	PublishTimeoutMS int         `mapstructure:"publish_timeout_ms" yaml:"publish_timeout_ms"`
	Kafka            KafkaConfig `mapstructure:"kafka" yaml:"kafka"`
}

// PublishTimeout bounds publishing one ticket event. Defaults to 2s.
func (e *EventsConfig) PublishTimeout() time.Duration {
	if e.PublishTimeoutMS <= 0 {
		return 2 * time.Second
	}
	return time.Duration(e.PublishTimeoutMS) * time.Millisecond
}

type RateLimitConfig struct {
	Enabled       bool `mapstructure:"enabled" yaml:"enabled"`
	Requests      int  `mapstructure:"requests" yaml:"requests"`
	WindowSeconds int  `mapstructure:"window_seconds" yaml:"window_seconds"`
}

type MigrationConfig struct {
	// Strategy is one of goose, golang-migrate or auto.
	Strategy string `mapstructure:"strategy" yaml:"strategy"`
}
