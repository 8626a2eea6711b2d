package writer

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/rickgao/orderbook-recorder/internal/model"
)

// appendReq is one queued append awaiting acknowledgement.
type appendReq struct {
	ctx  context.Context
	snap model.Snapshot
	done chan error
}

// SerialSink funnels appends from several connections through one goroutine
// that owns the underlying sink, so the durable handle is never written
// concurrently.
type SerialSink struct {
	next   Sink
	logger *slog.Logger

	reqs chan appendReq

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped chan struct{}
	started atomic.Bool
	once    sync.Once
}

// NewSerialSink wraps next. Call Start before Append.
func NewSerialSink(next Sink, logger *slog.Logger) *SerialSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SerialSink{
		next:    next,
		logger:  logger,
		reqs:    make(chan appendReq),
		stopped: make(chan struct{}),
	}
}

// Start launches the writer goroutine.
func (s *SerialSink) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.writeLoop()
	s.started.Store(true)

	s.logger.Info("serial sink started")
	return nil
}

// Append hands snap to the writer goroutine and waits for the result.
// Cancelling ctx does not abandon the record; only a stopped sink refuses
// it. The wait is bounded by the underlying sink's own write.
func (s *SerialSink) Append(ctx context.Context, snap model.Snapshot) error {
	if !s.started.Load() {
		return ErrSinkNotStarted
	}

	req := appendReq{ctx: ctx, snap: snap, done: make(chan error, 1)}

	select {
	case s.reqs <- req:
	case <-s.stopped:
		return ErrSinkClosed
	}

	// The writer always answers a request it has taken.
	return <-req.done
}

// writeLoop is the only goroutine touching next.
func (s *SerialSink) writeLoop() {
	defer s.wg.Done()
	defer close(s.stopped)

	for {
		select {
		case <-s.ctx.Done():
			return
		case req := <-s.reqs:
			req.done <- s.next.Append(context.WithoutCancel(req.ctx), req.snap)
		}
	}
}

// Stop shuts down the writer goroutine and closes the underlying sink.
func (s *SerialSink) Stop(ctx context.Context) error {
	var err error
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		} else {
			close(s.stopped)
		}

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			s.logger.Info("serial sink stopped")
		case <-ctx.Done():
			s.logger.Warn("serial sink stop timed out")
		}

		err = s.next.Close()
	})
	return err
}

// Close stops the sink without a deadline.
func (s *SerialSink) Close() error {
	return s.Stop(context.Background())
}
