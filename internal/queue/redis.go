package queue

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisEventField = "event"

// RedisConfig represents Redis Streams configuration
type RedisConfig struct {
	URL      string // Redis URL (e.g., redis://localhost:6379)
	Password string // Optional password
	DB       int    // Database number (default: 0)
	Stream   string // Stream key prefix (default: "spcgrid")
	Group    string // Consumer group name (default: "spcgrid-group")
	Consumer string // Consumer name (default: hostname)
}

func (cfg *RedisConfig) applyDefaults() {
	if cfg.Stream == "" {
		cfg.Stream = "spcgrid"
	}
	if cfg.Group == "" {
		cfg.Group = "spcgrid-group"
	}
	if cfg.Consumer == "" {
		hostname, _ := os.Hostname()
		if hostname == "" {
			hostname = "consumer-1"
		}
		cfg.Consumer = hostname
	}
}

// RedisQueue delivers violation events over Redis Streams. Each subject maps
// to one stream key under the configured prefix; consumers ack through a
// shared group so unhandled events are redelivered.
type RedisQueue struct {
	client  *redis.Client
	config  RedisConfig
	readers map[string]context.CancelFunc
	mu      sync.RWMutex
}

// newRedisQueue connects to Redis and verifies the connection
func newRedisQueue(cfg RedisConfig) (*RedisQueue, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		// Fallback to plain host:port
		opts = &redis.Options{
			Addr:     cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cfg.applyDefaults()

	return &RedisQueue{
		client:  client,
		config:  cfg,
		readers: make(map[string]context.CancelFunc),
	}, nil
}

// streamKey converts a subject to a Redis stream key
func (q *RedisQueue) streamKey(subject string) string {
	return q.config.Stream + ":" + subject
}

// Publish appends one event to the subject's stream
func (q *RedisQueue) Publish(ctx context.Context, subject string, data []byte) error {
	key := q.streamKey(subject)

	err := q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: key,
		ID:     "*",
		Values: map[string]interface{}{redisEventField: data},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to Redis stream %s: %w", key, err)
	}
	return nil
}

// PublishBatch appends a batch of events through one pipeline round trip
func (q *RedisQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	pipe := q.client.Pipeline()
	for _, msg := range messages {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: q.streamKey(msg.Subject),
			ID:     "*",
			Values: map[string]interface{}{redisEventField: msg.Data},
		})
	}

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to execute batch publish: %w", err)
	}

	published := 0
	for _, cmd := range cmds {
		if cmd.Err() == nil {
			published++
		}
	}
	return published, nil
}

// Subscribe starts a consumer-group reader for the subject's stream
func (q *RedisQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.readers[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	key := q.streamKey(subject)
	ctx, cancel := context.WithCancel(context.Background())

	err := q.client.XGroupCreateMkStream(ctx, key, q.config.Group, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		cancel()
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	go q.consume(ctx, key, handler)

	q.readers[subject] = cancel
	return nil
}

// consume reads the stream until the subscription context is cancelled.
// Events are acked only after the handler succeeds; failed events stay
// pending in the group for redelivery.
func (q *RedisQueue) consume(ctx context.Context, key string, handler MessageHandler) {
	for ctx.Err() == nil {
		streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    q.config.Group,
			Consumer: q.config.Consumer,
			Streams:  []string{key, ">"},
			Count:    100,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				data, ok := msg.Values[redisEventField].(string)
				if !ok {
					// Malformed entry, drop it
					q.client.XAck(ctx, key, q.config.Group, msg.ID)
					continue
				}
				if err := handler([]byte(data)); err != nil {
					continue
				}
				q.client.XAck(ctx, key, q.config.Group, msg.ID)
			}
		}
	}
}

// Unsubscribe stops the subject's reader
func (q *RedisQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	cancel, exists := q.readers[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}

	cancel()
	delete(q.readers, subject)
	return nil
}

// Close stops all readers and closes the Redis connection
func (q *RedisQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for subject, cancel := range q.readers {
		cancel()
		delete(q.readers, subject)
	}
	return q.client.Close()
}
