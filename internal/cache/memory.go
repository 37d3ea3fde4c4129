package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	b   []byte
	exp time.Time
}

// Memory is an in-process TTL cache. Safe for concurrent use.
type Memory struct {
	mu sync.RWMutex
	m  map[string]memoryEntry
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]memoryEntry)}
}

func (c *Memory) Get(_ context.Context, key string, dest any) error {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return ErrCacheMiss
	}
	if !e.exp.IsZero() && time.Now().After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return ErrCacheMiss
	}
	return json.Unmarshal(e.b, dest)
}

func (c *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.m[key] = memoryEntry{b: b, exp: exp}
	c.mu.Unlock()
	return nil
}
