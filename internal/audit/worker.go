package audit

import (
	"context"
	"errors"
	"log/slog"
)

// ErrBufferFull is returned by AsyncSink when the worker has fallen behind.
var ErrBufferFull = errors.New("audit buffer full")

// AsyncSink queues events for a Worker so slow sinks stay off the request path.
type AsyncSink struct {
	inbox chan Event
}

func NewAsyncSink(size int) *AsyncSink {
	return &AsyncSink{inbox: make(chan Event, size)}
}

func (s *AsyncSink) Append(_ context.Context, event Event) error {
	select {
	case s.inbox <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

// Inbox exposes the queue for a Worker.
func (s *AsyncSink) Inbox() <-chan Event {
	return s.inbox
}

// Worker consumes queued audit events and forwards them to a sink. Sink
// failures are logged and do not stop the worker.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run drains the inbox until ctx is cancelled, then flushes what is queued.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.forward(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	// flush with a fresh context; the run context is already done
	ctx := context.Background()
	for {
		select {
		case event := <-w.inbox:
			w.forward(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) forward(ctx context.Context, event Event) {
	if err := w.sink.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to forward audit event",
			"error", err,
			"action", event.Action,
			"subject", event.Subject,
		)
	}
}
