package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *RecorderConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if len(c.Instruments) == 0 && c.InstrumentsFile == "" {
		return errors.New("one of instruments or instruments_file is required")
	}
	if len(c.Instruments) > 0 && c.InstrumentsFile != "" {
		return errors.New("instruments and instruments_file are mutually exclusive")
	}

	if err := c.Feed.validate(); err != nil {
		return err
	}

	switch c.Sink.Kind {
	case SinkCSV:
		if c.Sink.CSV.Path == "" {
			return errors.New("sink.csv.path is required")
		}
	case SinkPostgres:
		if err := c.Sink.Postgres.DB.validate("sink.postgres.db"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("sink.kind must be %q or %q, got %q", SinkCSV, SinkPostgres, c.Sink.Kind)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	if c.Health.Port < 0 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 0 and 65535, got %d", c.Health.Port)
	}

	return nil
}

func (f *FeedConfig) validate() error {
	if !strings.HasPrefix(f.URL, "ws://") && !strings.HasPrefix(f.URL, "wss://") {
		return fmt.Errorf("feed.url must be a ws:// or wss:// URL, got %q", f.URL)
	}
	if f.PingInterval <= 0 {
		return errors.New("feed.ping_interval must be > 0")
	}
	if strings.TrimSpace(f.PingMessage) == "" {
		return errors.New("feed.ping_message is required")
	}
	if f.ReceiveTimeout <= 0 {
		return errors.New("feed.receive_timeout must be > 0")
	}
	if f.ReconnectDelay <= 0 {
		return errors.New("feed.reconnect_delay must be > 0")
	}
	if f.StaleTimeout < 0 {
		return errors.New("feed.stale_timeout must be >= 0")
	}
	if f.Connections < 1 {
		return errors.New("feed.connections must be >= 1")
	}
	if f.BufferSize < 1 {
		return errors.New("feed.buffer_size must be >= 1")
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
