package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/notify"
)

type fakeSource struct {
	mu    sync.Mutex
	queue []any
}

func (f *fakeSource) Pop(ctx context.Context, timeout time.Duration) (*notify.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		time.Sleep(timeout)
		return nil, nil
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	switch v := next.(type) {
	case error:
		return nil, v
	case notify.Message:
		return &v, nil
	}
	return nil, nil
}

type recordingSink struct {
	mu        sync.Mutex
	delivered []notify.Message
	got       chan struct{}
}

func (s *recordingSink) Deliver(m notify.Message) error {
	s.mu.Lock()
	s.delivered = append(s.delivered, m)
	s.mu.Unlock()
	s.got <- struct{}{}
	return nil
}

func TestWorkerDeliversQueuedMessagesAndStops(t *testing.T) {
	source := &fakeSource{queue: []any{
		notify.Message{ID: "m-1", To: "a@example.com"},
		errors.New("transient"),
		notify.Message{ID: "m-2", To: "b@example.com"},
	}}
	sink := &recordingSink{got: make(chan struct{}, 2)}
	w := NewNotificationWorker(source, sink, zap.NewNop(), time.Millisecond)
	w.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := StartNotificationWorker(ctx, w)

	for i := 0; i < 2; i++ {
		select {
		case <-sink.got:
		case <-time.After(2 * time.Second):
			t.Fatal("message not delivered")
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.delivered, 2)
	assert.Equal(t, "m-1", sink.delivered[0].ID)
	assert.Equal(t, "m-2", sink.delivered[1].ID)
}

func TestStartNilWorker(t *testing.T) {
	done := StartNotificationWorker(context.Background(), nil)
	_, open := <-done
	assert.False(t, open)
}
