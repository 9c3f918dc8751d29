package store

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dupTTL = 30 * time.Second

// DupFilter suppresses APRS-IS duplicates: the same packet arrives once
// per igate that heard it. Seen keys live in redis under a short TTL so
// the filter carries no local state.
type DupFilter struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDupFilter(addr string) (*DupFilter, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &DupFilter{rdb: rdb, ttl: dupTTL}, nil
}

// Seen marks the line and reports whether it was already marked inside the
// TTL window. Redis errors count as unseen: a broken filter must not stop
// ingestion.
func (d *DupFilter) Seen(ctx context.Context, line string) bool {
	sum := sha1.Sum([]byte(line))
	key := "aprs2influxdb:dup:" + hex.EncodeToString(sum[:])
	fresh, err := d.rdb.SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return false
	}
	return !fresh
}
