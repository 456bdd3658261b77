// Package cache stores computed chart results keyed by a digest of the
// request, so repeated computations over the same series are served without
// re-running the engine. Entries are snappy-compressed JSON.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"

	"github.com/spcgrid/spcgrid/internal/config"
	"github.com/spcgrid/spcgrid/internal/spc"
)

// ResultCache stores computed chart results
type ResultCache interface {
	// Get returns the cached result for a key, or (nil, false) on a miss
	Get(ctx context.Context, key string) (*spc.Result, bool, error)

	// Set stores a result under a key
	Set(ctx context.Context, key string, result *spc.Result) error

	// Close releases backend resources
	Close() error
}

// Key derives the cache key for an engine request. Identical requests hash
// identically; any field change produces a different key.
func Key(req spc.Request) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request for cache key: %w", err)
	}
	sum := sha256.Sum256(data)
	return "chart:" + hex.EncodeToString(sum[:]), nil
}

// New creates a cache backend from configuration. A disabled cache returns
// nil; callers treat a nil cache as a pass-through.
func New(cfg config.CacheConfig) (ResultCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	switch cfg.Backend {
	case "redis":
		return newRedisCache(cfg)
	case "memory":
		return newMemoryCache(cfg.MaxItems, cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s (supported: redis, memory)", cfg.Backend)
	}
}

// encodeResult serializes and compresses a result for storage
func encodeResult(result *spc.Result) ([]byte, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return snappy.Encode(nil, data), nil
}

// decodeResult decompresses and deserializes a stored result
func decodeResult(data []byte) (*spc.Result, error) {
	decompressed, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("snappy decompress failed: %w", err)
	}

	var result spc.Result
	if err := json.Unmarshal(decompressed, &result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &result, nil
}
