package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no frames)")
	ErrAlreadyClosed   = errors.New("already closed")
	ErrNoIdentifiers   = errors.New("no subscription identifiers")
)

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// SubscribeMessage is the one outbound subscription request per connection.
type SubscribeMessage struct {
	AssetsIDs []string `json:"assets_ids"`
	Type      string   `json:"type"`
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // Feed URL (e.g., wss://ws-subscriptions-clob.polymarket.com/ws/market)
	HandshakeTimeout time.Duration // Dial + upgrade deadline
	WriteTimeout     time.Duration // Write deadline for sends
	BufferSize       int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       1024,
	}
}

// SupervisorConfig configures a Supervisor.
type SupervisorConfig struct {
	URL              string        // Feed URL
	Channel          string        // Feed channel type tag sent in the subscribe message
	PingMessage      string        // Text heartbeat probe
	PongMessage      string        // Heartbeat acknowledgment (matched trimmed, case-insensitive)
	PingInterval     time.Duration // Heartbeat cadence
	ReceiveTimeout   time.Duration // Upper bound on a single receive wait
	ReconnectDelay   time.Duration // Fixed wait between connection attempts
	HandshakeTimeout time.Duration // Dial + upgrade deadline
	WriteTimeout     time.Duration // Write deadline for subscribe and heartbeat frames
	StaleTimeout     time.Duration // No frames for this long is a fault (0 = disabled)
	BufferSize       int           // Client message buffer size
}

// DefaultSupervisorConfig returns sensible defaults.
func DefaultSupervisorConfig() SupervisorConfig {
	return SupervisorConfig{
		URL:              "wss://ws-subscriptions-clob.polymarket.com/ws/market",
		Channel:          "market",
		PingMessage:      "PING",
		PongMessage:      "PONG",
		PingInterval:     time.Second,
		ReceiveTimeout:   8 * time.Second,
		ReconnectDelay:   3 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       1024,
	}
}

// clientConfig derives the transport settings for one connection attempt.
func (c SupervisorConfig) clientConfig() ClientConfig {
	return ClientConfig{
		URL:              c.URL,
		HandshakeTimeout: c.HandshakeTimeout,
		WriteTimeout:     c.WriteTimeout,
		BufferSize:       c.BufferSize,
	}
}

// State is the supervisor's connection state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateSubscribed
	StateReceiving
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateReceiving:
		return "receiving"
	default:
		return "unknown"
	}
}

// Stats is a point-in-time view of a supervisor's counters.
type Stats struct {
	ConnID            int    `json:"conn_id"`
	State             string `json:"state"`
	Session           string `json:"session,omitempty"`
	Identifiers       int    `json:"identifiers"`
	Connects          int64  `json:"connects"`
	Reconnects        int64  `json:"reconnects"`
	ConnectFailures   int64  `json:"connect_failures"`
	Frames            int64  `json:"frames"`
	Pongs             int64  `json:"pongs"`
	Discarded         int64  `json:"discarded"`
	Snapshots         int64  `json:"snapshots"`
	SinkErrors        int64  `json:"sink_errors"`
	CachedInstruments int64  `json:"cached_instruments"`
}
