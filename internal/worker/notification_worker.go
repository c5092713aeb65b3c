package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/notify"
)

// MessageSource yields queued messages; Pop returns nil, nil on an empty wait.
type MessageSource interface {
	Pop(ctx context.Context, timeout time.Duration) (*notify.Message, error)
}

// MessageSink delivers a message to its recipient.
type MessageSink interface {
	Deliver(m notify.Message) error
}

// NotificationWorker drains the notification queue.
type NotificationWorker struct {
	source  MessageSource
	sink    MessageSink
	logger  *zap.Logger
	poll    time.Duration
	backoff time.Duration
}

// NewNotificationWorker builds a worker polling source every poll interval.
func NewNotificationWorker(source MessageSource, sink MessageSink, logger *zap.Logger, poll time.Duration) *NotificationWorker {
	return &NotificationWorker{
		source:  source,
		sink:    sink,
		logger:  logger,
		poll:    poll,
		backoff: time.Second,
	}
}

// Run blocks until ctx is cancelled.
func (w *NotificationWorker) Run(ctx context.Context) {
	w.logger.Info("notification worker started")
	defer w.logger.Info("notification worker stopped")

	for {
		if ctx.Err() != nil {
			return
		}
		msg, err := w.source.Pop(ctx, w.poll)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			w.logger.Warn("notification queue pop failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.backoff):
			}
			continue
		}
		if msg == nil {
			continue
		}
		if err := w.sink.Deliver(*msg); err != nil {
			w.logger.Error("notification delivery failed",
				zap.String("message_id", msg.ID),
				zap.String("to", msg.To),
				zap.Error(err))
		}
	}
}

// StartNotificationWorker runs the worker in its own goroutine. The returned
// channel closes once the worker has stopped.
func StartNotificationWorker(ctx context.Context, w *NotificationWorker) <-chan struct{} {
	done := make(chan struct{})
	if w == nil {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	return done
}
