package queue

import (
	"context"
	"fmt"
	"sync"
)

// memoryBufferSize bounds each subject's backlog before Publish fails
const memoryBufferSize = 10000

// MemoryQueue delivers violation events over in-process channels. It is the
// default broker for development and tests; events do not survive a process
// restart and there is no redelivery.
type MemoryQueue struct {
	mu       sync.RWMutex
	mailbox  map[string]chan []byte
	cancelBy map[string]context.CancelFunc
}

// newMemoryQueue creates a new in-memory queue instance
func newMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		mailbox:  make(map[string]chan []byte),
		cancelBy: make(map[string]context.CancelFunc),
	}
}

func (q *MemoryQueue) channelFor(subject string) chan []byte {
	q.mu.Lock()
	defer q.mu.Unlock()

	ch, ok := q.mailbox[subject]
	if !ok {
		ch = make(chan []byte, memoryBufferSize)
		q.mailbox[subject] = ch
	}
	return ch
}

// Publish enqueues one event for the subject. The payload is copied so the
// caller may reuse its buffer.
func (q *MemoryQueue) Publish(ctx context.Context, subject string, data []byte) error {
	ch := q.channelFor(subject)

	payload := make([]byte, len(data))
	copy(payload, data)

	select {
	case ch <- payload:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("channel full for subject: %s", subject)
	}
}

// PublishBatch enqueues each event in turn, counting the successes
func (q *MemoryQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	published := 0
	for _, msg := range messages {
		if err := q.Publish(ctx, msg.Subject, msg.Data); err != nil {
			continue
		}
		published++
	}
	return published, nil
}

// Subscribe drains the subject's channel in a background goroutine. Handler
// errors drop the event; there is no redelivery in this backend.
func (q *MemoryQueue) Subscribe(subject string, handler MessageHandler) error {
	ch := q.channelFor(subject)

	q.mu.Lock()
	if _, exists := q.cancelBy[subject]; exists {
		q.mu.Unlock()
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}
	ctx, cancel := context.WithCancel(context.Background())
	q.cancelBy[subject] = cancel
	q.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case data := <-ch:
				_ = handler(data)
			}
		}
	}()

	return nil
}

// Unsubscribe stops the subject's consumer goroutine
func (q *MemoryQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	cancel, exists := q.cancelBy[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	cancel()
	delete(q.cancelBy, subject)
	return nil
}

// Close stops all consumers and closes every channel
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for subject, cancel := range q.cancelBy {
		cancel()
		delete(q.cancelBy, subject)
	}
	for subject, ch := range q.mailbox {
		close(ch)
		delete(q.mailbox, subject)
	}
	return nil
}

// GetPendingCount returns the number of undelivered events for a subject
func (q *MemoryQueue) GetPendingCount(subject string) int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if ch, ok := q.mailbox[subject]; ok {
		return len(ch)
	}
	return 0
}
