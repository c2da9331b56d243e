package cache

import "time"

// BytesCache is a minimal cache API storing raw bytes with TTL. Aggregation
// results are cached as encoded JSON; a miss simply means recompute, so no
// correctness depends on this layer.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
