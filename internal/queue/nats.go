package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSQueue delivers violation events over NATS JetStream. Each subscribed
// subject gets a file-backed stream and a durable consumer, so alert
// consumers pick up where they left off across restarts.
type NATSQueue struct {
	conn *nats.Conn
	js   nats.JetStreamContext

	mu   sync.RWMutex
	subs map[string]*nats.Subscription
}

// newNATSQueue connects to NATS and opens a JetStream context
func newNATSQueue(url string) (*NATSQueue, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSQueue{
		conn: conn,
		js:   js,
		subs: make(map[string]*nats.Subscription),
	}, nil
}

// Publish publishes one event to a subject
func (q *NATSQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if _, err := q.js.PublishAsync(subject, data); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}
	return nil
}

// PublishBatch publishes a batch of events asynchronously and waits for the
// server acks in a single round trip.
func (q *NATSQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	futures := make([]nats.PubAckFuture, 0, len(messages))
	for _, msg := range messages {
		future, err := q.js.PublishAsync(msg.Subject, msg.Data)
		if err != nil {
			continue
		}
		futures = append(futures, future)
	}

	select {
	case <-q.js.PublishAsyncComplete():
	case <-ctx.Done():
		return len(futures), fmt.Errorf("timeout waiting for batch publish: %w", ctx.Err())
	}

	published := 0
	for _, future := range futures {
		select {
		case <-future.Ok():
			published++
		case <-future.Err():
		default:
			// Still pending after PublishAsyncComplete, count as success
			published++
		}
	}
	return published, nil
}

// ensureStream creates the subject's file-backed stream if it does not exist
func (q *NATSQueue) ensureStream(subject string) (string, error) {
	name := "spcgrid-" + sanitizeStreamName(subject)
	if _, err := q.js.StreamInfo(name); err == nil {
		return name, nil
	}

	_, err := q.js.AddStream(&nats.StreamConfig{
		Name:     name,
		Subjects: []string{subject},
		Storage:  nats.FileStorage,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create stream for subject %s: %w", subject, err)
	}
	return name, nil
}

// Subscribe attaches a durable JetStream consumer to the subject. Events
// are acked per message; handler errors NAK for redelivery, capped at three
// attempts.
func (q *NATSQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.subs[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	if _, err := q.ensureStream(subject); err != nil {
		return err
	}

	// Consumer names can only contain A-Z, a-z, 0-9, dash and underscore
	durable := "consumer-" + sanitizeStreamName(subject)

	sub, err := q.js.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(msg.Data); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxAckPending(100),
		nats.AckWait(30*time.Second),
		nats.MaxDeliver(3),
		nats.DeliverAll(),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	q.subs[subject] = sub
	return nil
}

// Unsubscribe detaches the subject's consumer
func (q *NATSQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	sub, exists := q.subs[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe from subject %s: %w", subject, err)
	}

	delete(q.subs, subject)
	return nil
}

// Close detaches all consumers and closes the connection
func (q *NATSQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for subject, sub := range q.subs {
		if err := sub.Unsubscribe(); err != nil {
			continue
		}
		delete(q.subs, subject)
	}

	q.conn.Close()
	return nil
}

// sanitizeStreamName replaces characters that are invalid in stream and
// consumer names
func sanitizeStreamName(subject string) string {
	out := make([]byte, len(subject))
	for i := 0; i < len(subject); i++ {
		c := subject[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
			out[i] = c
		default:
			out[i] = '_'
		}
	}
	return string(out)
}
