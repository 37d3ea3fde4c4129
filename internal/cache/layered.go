package cache

import (
	"context"
	"time"
)

// Layered checks a fast local store before a shared one and backfills the
// local store on remote hits. The remote layer is optional.
type Layered struct {
	local    Store
	remote   Store
	localTTL time.Duration
}

// NewLayered wraps local and remote stores. localTTL bounds how long a
// backfilled entry may outlive the remote copy.
func NewLayered(local, remote Store, localTTL time.Duration) *Layered {
	return &Layered{local: local, remote: remote, localTTL: localTTL}
}

func (l *Layered) Get(ctx context.Context, key string, dest any) error {
	if err := l.local.Get(ctx, key, dest); err == nil {
		return nil
	}
	if l.remote == nil {
		return ErrCacheMiss
	}
	if err := l.remote.Get(ctx, key, dest); err != nil {
		return err
	}
	// Backfill failures only cost a future local miss.
	_ = l.local.Set(ctx, key, dest, l.localTTL)
	return nil
}

func (l *Layered) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if err := l.local.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	if l.remote == nil {
		return nil
	}
	return l.remote.Set(ctx, key, value, ttl)
}
