// Package cache provides TTL-bounded key-value stores for card-data responses.
package cache

import (
	"context"
	"time"
)

// Store is a key-value store whose entries expire after a per-entry TTL.
//
// Get reports a miss with found=false and a nil error. Errors are reserved for
// an unavailable backing store; callers on the lookup path treat them as a miss.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix and returns the number removed.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
}

// Stats tracks cache performance metrics.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// HitRate returns the hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total) * 100.0
}
