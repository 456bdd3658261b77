package queue

import (
	"fmt"
	"strings"

	"github.com/spcgrid/spcgrid/internal/config"
)

// Supported queue types
const (
	TypeNATS   = "nats"
	TypeRedis  = "redis"
	TypeMemory = "memory"
)

// NewQueue creates a new Queue instance based on configuration.
// Default is NATS if type is not specified.
func NewQueue(cfg config.EventsConfig) (Queue, error) {
	queueType := strings.ToLower(cfg.Type)
	if queueType == "" {
		queueType = TypeNATS
	}

	switch queueType {
	case TypeNATS:
		return newNATSQueue(cfg.URL)

	case TypeRedis:
		return newRedisQueue(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.RedisDB,
			Stream:   cfg.RedisStream,
		})

	case TypeMemory:
		return newMemoryQueue(), nil

	default:
		return nil, fmt.Errorf("unsupported queue type: %s (supported: nats, redis, memory)", queueType)
	}
}
