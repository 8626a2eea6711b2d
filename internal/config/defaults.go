package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultFeedURL           = "wss://ws-subscriptions-clob.polymarket.com/ws/market"
	DefaultChannel           = "market"
	DefaultPingMessage       = "PING"
	DefaultPongMessage       = "PONG"
	DefaultPingInterval      = 1 * time.Second
	DefaultReceiveTimeout    = 8 * time.Second
	DefaultReconnectDelay    = 3 * time.Second
	DefaultHandshakeTimeout  = 10 * time.Second
	DefaultWriteTimeout      = 5 * time.Second
	DefaultConnections       = 1
	DefaultBufferSize        = 1024
	DefaultSinkKind          = SinkCSV
	DefaultCSVPath           = "data/orderbooks/all_orderbooks.csv"
	DefaultTable             = "orderbook_snapshots"
	DefaultDBPort            = 5432
	DefaultDBSSLMode         = "prefer"
	DefaultMaxConns          = 4
	DefaultMinConns          = 1
	DefaultCatalogURL        = "https://clob.polymarket.com"
	DefaultCatalogTimeout    = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultRequestsPerSecond = 5
	DefaultBurst             = 1
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
	DefaultLogMaxSizeMB      = 100
	DefaultLogMaxBackups     = 5
	DefaultLogMaxAgeDays     = 30
)

func (c *RecorderConfig) applyDefaults() {
	// Feed defaults
	if c.Feed.URL == "" {
		c.Feed.URL = DefaultFeedURL
	}
	if c.Feed.Channel == "" {
		c.Feed.Channel = DefaultChannel
	}
	if c.Feed.PingMessage == "" {
		c.Feed.PingMessage = DefaultPingMessage
	}
	if c.Feed.PongMessage == "" {
		c.Feed.PongMessage = DefaultPongMessage
	}
	if c.Feed.PingInterval == 0 {
		c.Feed.PingInterval = DefaultPingInterval
	}
	if c.Feed.ReceiveTimeout == 0 {
		c.Feed.ReceiveTimeout = DefaultReceiveTimeout
	}
	if c.Feed.ReconnectDelay == 0 {
		c.Feed.ReconnectDelay = DefaultReconnectDelay
	}
	if c.Feed.HandshakeTimeout == 0 {
		c.Feed.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Feed.WriteTimeout == 0 {
		c.Feed.WriteTimeout = DefaultWriteTimeout
	}
	if c.Feed.Connections == 0 {
		c.Feed.Connections = DefaultConnections
	}
	if c.Feed.BufferSize == 0 {
		c.Feed.BufferSize = DefaultBufferSize
	}

	// Sink defaults
	if c.Sink.Kind == "" {
		c.Sink.Kind = DefaultSinkKind
	}
	if c.Sink.CSV.Path == "" {
		c.Sink.CSV.Path = DefaultCSVPath
	}
	if c.Sink.Postgres.Table == "" {
		c.Sink.Postgres.Table = DefaultTable
	}
	if c.Sink.Postgres.WriteTimeout == 0 {
		c.Sink.Postgres.WriteTimeout = DefaultWriteTimeout
	}
	applyDBDefaults(&c.Sink.Postgres.DB)

	// Catalog defaults
	if c.Catalog.URL == "" {
		c.Catalog.URL = DefaultCatalogURL
	}
	if c.Catalog.Timeout == 0 {
		c.Catalog.Timeout = DefaultCatalogTimeout
	}
	if c.Catalog.MaxRetries == 0 {
		c.Catalog.MaxRetries = DefaultMaxRetries
	}
	if c.Catalog.RequestsPerSecond == 0 {
		c.Catalog.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if c.Catalog.Burst == 0 {
		c.Catalog.Burst = DefaultBurst
	}

	// Logging defaults
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	if c.Logging.MaxSizeMB == 0 {
		c.Logging.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups == 0 {
		c.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if c.Logging.MaxAgeDays == 0 {
		c.Logging.MaxAgeDays = DefaultLogMaxAgeDays
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
