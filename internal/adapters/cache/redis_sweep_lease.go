package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSweepLease implements the single-flight lease for periodic sweeps with
// a SET NX key. The TTL bounds how long a crashed holder blocks the next
// sweep.
type RedisSweepLease struct {
	client *redis.Client
}

func NewRedisSweepLease(client *redis.Client) *RedisSweepLease {
	return &RedisSweepLease{client: client}
}

func (l *RedisSweepLease) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return l.client.SetNX(ctx, "security:sweep:"+name, "1", ttl).Result()
}

func (l *RedisSweepLease) Release(ctx context.Context, name string) error {
	return l.client.Del(ctx, "security:sweep:"+name).Err()
}
