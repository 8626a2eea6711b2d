package connection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/orderbook-recorder/internal/envelope"
	"github.com/rickgao/orderbook-recorder/internal/model"
	"github.com/rickgao/orderbook-recorder/internal/snapshot"
)

// FrameProcessor turns one normalized payload into a stored snapshot.
type FrameProcessor interface {
	Process(ctx context.Context, payload envelope.Object, cache *snapshot.Cache) (*model.Snapshot, error)
}

// ClientFactory creates the transport for one connection attempt.
type ClientFactory func(cfg ClientConfig, logger *slog.Logger) Client

// Option customizes a Supervisor.
type Option func(*Supervisor)

// WithClientFactory replaces the WebSocket client constructor.
func WithClientFactory(f ClientFactory) Option {
	return func(s *Supervisor) {
		s.newClient = f
	}
}

// WithStateHook registers fn to be called on every state transition.
// fn runs on the supervisor goroutine and must not block.
func WithStateHook(fn func(State)) Option {
	return func(s *Supervisor) {
		s.onState = fn
	}
}

// Supervisor owns one feed connection and runs it forever.
type Supervisor struct {
	id        int
	cfg       SupervisorConfig
	ids       []string
	proc      FrameProcessor
	logger    *slog.Logger
	newClient ClientFactory
	onState   func(State)

	state   atomic.Int32
	session atomic.Value // string

	connects        atomic.Int64
	reconnects      atomic.Int64
	connectFailures atomic.Int64
	frames          atomic.Int64
	pongs           atomic.Int64
	discarded       atomic.Int64
	snapshots       atomic.Int64
	sinkErrors      atomic.Int64
	cached          atomic.Int64
}

// NewSupervisor creates a supervisor for the given subscription identifiers.
func NewSupervisor(id int, cfg SupervisorConfig, ids []string, proc FrameProcessor, logger *slog.Logger, opts ...Option) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Supervisor{
		id:        id,
		cfg:       cfg,
		ids:       append([]string(nil), ids...),
		proc:      proc,
		logger:    logger.With("conn_id", id),
		newClient: NewClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the connection id.
func (s *Supervisor) ID() int {
	return s.id
}

// Identifiers returns the identifiers this supervisor subscribes to.
func (s *Supervisor) Identifiers() []string {
	return append([]string(nil), s.ids...)
}

// State returns the current connection state.
func (s *Supervisor) State() State {
	return State(s.state.Load())
}

// Stats returns current counters.
func (s *Supervisor) Stats() Stats {
	session, _ := s.session.Load().(string)
	return Stats{
		ConnID:            s.id,
		State:             s.State().String(),
		Session:           session,
		Identifiers:       len(s.ids),
		Connects:          s.connects.Load(),
		Reconnects:        s.reconnects.Load(),
		ConnectFailures:   s.connectFailures.Load(),
		Frames:            s.frames.Load(),
		Pongs:             s.pongs.Load(),
		Discarded:         s.discarded.Load(),
		Snapshots:         s.snapshots.Load(),
		SinkErrors:        s.sinkErrors.Load(),
		CachedInstruments: s.cached.Load(),
	}
}

// Run connects, subscribes and receives until ctx is cancelled. Transport
// faults never end the loop; the supervisor waits ReconnectDelay and starts
// a new session. Run returns nil on cancellation.
func (s *Supervisor) Run(ctx context.Context) error {
	if len(s.ids) == 0 {
		return ErrNoIdentifiers
	}

	s.logger.Info("supervisor started", "identifiers", len(s.ids), "url", s.cfg.URL)

	for {
		err := s.runSession(ctx)
		s.setState(StateDisconnected)

		if ctx.Err() != nil {
			s.logger.Info("supervisor stopped")
			return nil
		}

		s.logger.Warn("connection lost, reconnecting",
			"error", err,
			"delay", s.cfg.ReconnectDelay,
		)

		timer := time.NewTimer(s.cfg.ReconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("supervisor stopped")
			return nil
		case <-timer.C:
		}
	}
}

// runSession performs one connect, subscribe and receive cycle.
func (s *Supervisor) runSession(ctx context.Context) error {
	s.setState(StateConnecting)

	session := uuid.NewString()
	s.session.Store(session)
	s.cached.Store(0)
	logger := s.logger.With("session", session)

	client := s.newClient(s.cfg.clientConfig(), logger)
	if err := client.Connect(ctx); err != nil {
		s.connectFailures.Add(1)
		return fmt.Errorf("connect: %w", err)
	}
	defer client.Close()

	if s.connects.Add(1) > 1 {
		s.reconnects.Add(1)
	}
	logger.Info("connected", "url", s.cfg.URL)

	if err := s.subscribe(client); err != nil {
		return err
	}
	s.setState(StateSubscribed)
	logger.Info("subscribed", "identifiers", len(s.ids), "channel", s.cfg.Channel)

	return s.receive(ctx, client, logger)
}

func (s *Supervisor) subscribe(client Client) error {
	data, err := json.Marshal(SubscribeMessage{
		AssetsIDs: s.ids,
		Type:      s.cfg.Channel,
	})
	if err != nil {
		return fmt.Errorf("marshal subscribe: %w", err)
	}

	if err := client.Send(data); err != nil {
		return fmt.Errorf("send subscribe: %w", err)
	}
	return nil
}

// receive is the per-session loop. The heartbeat is checked before every
// wait and each wait ends no later than the next heartbeat is due.
func (s *Supervisor) receive(ctx context.Context, client Client, logger *slog.Logger) error {
	cache := snapshot.NewCache()
	s.setState(StateReceiving)

	heartbeat := s.cfg.PingInterval > 0 && s.cfg.PingMessage != ""
	lastPing := time.Now()
	lastFrame := lastPing

	for {
		now := time.Now()

		if heartbeat && now.Sub(lastPing) >= s.cfg.PingInterval {
			if err := client.Send([]byte(s.cfg.PingMessage)); err != nil {
				return fmt.Errorf("send heartbeat: %w", err)
			}
			lastPing = now
		}

		if s.cfg.StaleTimeout > 0 && now.Sub(lastFrame) > s.cfg.StaleTimeout {
			logger.Warn("no frames received, connection stale",
				"last_frame", lastFrame,
				"timeout", s.cfg.StaleTimeout,
			)
			return ErrStaleConnection
		}

		wait := s.waitBound(now, lastPing, heartbeat)
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case <-timer.C:
			// A quiet feed is not a fault.

		case msg, ok := <-client.Messages():
			timer.Stop()
			if !ok {
				err := client.Err()
				if err == nil {
					err = ErrNotConnected
				}
				return fmt.Errorf("read: %w", err)
			}
			lastFrame = msg.ReceivedAt
			s.handleFrame(ctx, msg.Data, cache, logger)
		}
	}
}

// waitBound returns min(ReceiveTimeout, time until the next heartbeat).
func (s *Supervisor) waitBound(now, lastPing time.Time, heartbeat bool) time.Duration {
	wait := s.cfg.ReceiveTimeout
	if wait <= 0 {
		wait = DefaultSupervisorConfig().ReceiveTimeout
	}
	if heartbeat {
		if untilPing := s.cfg.PingInterval - now.Sub(lastPing); untilPing < wait {
			wait = untilPing
		}
	}
	if s.cfg.StaleTimeout > 0 && s.cfg.StaleTimeout < wait {
		wait = s.cfg.StaleTimeout
	}
	if wait < time.Millisecond {
		wait = time.Millisecond
	}
	return wait
}

// handleFrame runs one inbound frame through the pipeline. Nothing here
// ends the session.
func (s *Supervisor) handleFrame(ctx context.Context, data []byte, cache *snapshot.Cache, logger *slog.Logger) {
	s.frames.Add(1)

	if s.isPong(data) {
		s.pongs.Add(1)
		return
	}

	v, err := envelope.Parse(data)
	if err != nil {
		s.discarded.Add(1)
		logger.Debug("discarding malformed frame", "error", err, "bytes", len(data))
		return
	}

	payloads := envelope.Candidates(v)
	if len(payloads) == 0 {
		s.discarded.Add(1)
		logger.Debug("no order book payload in frame", "bytes", len(data))
		return
	}

	for _, payload := range payloads {
		snap, err := s.proc.Process(ctx, payload, cache)
		if err != nil {
			s.sinkErrors.Add(1)
			logger.Error("failed to persist snapshot, record skipped", "error", err)
		}
		if snap != nil {
			s.snapshots.Add(1)
		}
	}

	s.cached.Store(int64(cache.Len()))
}

func (s *Supervisor) isPong(data []byte) bool {
	if s.cfg.PongMessage == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(string(data)), s.cfg.PongMessage)
}

func (s *Supervisor) setState(st State) {
	prev := State(s.state.Swap(int32(st)))
	if prev != st && s.onState != nil {
		s.onState(st)
	}
}
