package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/spcgrid/spcgrid/internal/spc"
)

// memoryCache is an LRU cache with per-entry TTL. It stores the same
// compressed encoding as the redis backend so both paths exercise identical
// serialization.
type memoryCache struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	order    *list.List // Front is most recently used
	maxItems int
	ttl      time.Duration
}

type memoryEntry struct {
	key       string
	data      []byte
	expiresAt time.Time
}

func newMemoryCache(maxItems int, ttl time.Duration) *memoryCache {
	if maxItems < 1 {
		maxItems = 1
	}
	return &memoryCache{
		items:    make(map[string]*list.Element),
		order:    list.New(),
		maxItems: maxItems,
		ttl:      ttl,
	}
}

func (c *memoryCache) Get(ctx context.Context, key string) (*spc.Result, bool, error) {
	c.mu.Lock()

	elem, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return nil, false, nil
	}

	ent := elem.Value.(*memoryEntry)
	if time.Now().After(ent.expiresAt) {
		c.order.Remove(elem)
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false, nil
	}

	c.order.MoveToFront(elem)
	data := ent.data
	c.mu.Unlock()

	result, err := decodeResult(data)
	if err != nil {
		return nil, false, err
	}
	return result, true, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, result *spc.Result) error {
	data, err := encodeResult(result)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*memoryEntry)
		ent.data = data
		ent.expiresAt = time.Now().Add(c.ttl)
		c.order.MoveToFront(elem)
		return nil
	}

	elem := c.order.PushFront(&memoryEntry{
		key:       key,
		data:      data,
		expiresAt: time.Now().Add(c.ttl),
	})
	c.items[key] = elem

	// Evict least recently used
	for len(c.items) > c.maxItems {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*memoryEntry).key)
	}

	return nil
}

func (c *memoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.order.Init()
	return nil
}
