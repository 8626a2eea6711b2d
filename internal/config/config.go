package config

import (
	"time"

	"github.com/rickgao/orderbook-recorder/internal/market"
)

// RecorderConfig is the root configuration for a recorder instance.
type RecorderConfig struct {
	Instance        InstanceConfig     `yaml:"instance"`
	Feed            FeedConfig         `yaml:"feed"`
	Instruments     market.Instruments `yaml:"instruments"`      // market -> side -> identifier
	InstrumentsFile string             `yaml:"instruments_file"` // Alternative to Instruments
	Sink            SinkConfig         `yaml:"sink"`
	Catalog         CatalogConfig      `yaml:"catalog"`
	Logging         LoggingConfig      `yaml:"logging"`
	Health          HealthConfig       `yaml:"health"`
}

// InstanceConfig identifies this recorder.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// FeedConfig holds streaming feed and supervisor settings.
type FeedConfig struct {
	URL              string        `yaml:"url"`
	Channel          string        `yaml:"channel"`
	PingMessage      string        `yaml:"ping_message"`
	PongMessage      string        `yaml:"pong_message"`
	PingInterval     time.Duration `yaml:"ping_interval"` // 0 selects the default; the heartbeat cannot be turned off
	ReceiveTimeout   time.Duration `yaml:"receive_timeout"`
	ReconnectDelay   time.Duration `yaml:"reconnect_delay"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	StaleTimeout     time.Duration `yaml:"stale_timeout"` // 0 disables stale detection
	Connections      int           `yaml:"connections"`   // Identifiers are split round-robin
	BufferSize       int           `yaml:"buffer_size"`
}

// Sink kinds.
const (
	SinkCSV      = "csv"
	SinkPostgres = "postgres"
)

// SinkConfig selects and configures the durable store.
type SinkConfig struct {
	Kind     string             `yaml:"kind"` // "csv" or "postgres"
	CSV      CSVConfig          `yaml:"csv"`
	Postgres PostgresSinkConfig `yaml:"postgres"`
}

// CSVConfig configures the CSV sink.
type CSVConfig struct {
	Path string `yaml:"path"`
}

// PostgresSinkConfig configures the Postgres sink.
type PostgresSinkConfig struct {
	DB           DBConfig      `yaml:"db"`
	Table        string        `yaml:"table"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// CatalogConfig holds market catalog REST settings used by marketsearch.
type CatalogConfig struct {
	URL               string        `yaml:"url"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
}

// LoggingConfig controls the operator log.
type LoggingConfig struct {
	Level      string `yaml:"level"`  // debug, info, warn, error
	Format     string `yaml:"format"` // text or json
	File       string `yaml:"file"`   // Empty logs to stdout
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"` // 0 disables the endpoint
}
