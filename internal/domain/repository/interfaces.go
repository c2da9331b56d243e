package repository

import (
	"context"

	"StockPulse/internal/domain/models"
)

// PostStore persists and queries analyzed posts. Insert enforces the dedup
// key at the storage boundary: inserting an existing SourceID returns
// models.ErrDuplicatePost. A post commits atomically; readers never observe
// a partially-written record.
type PostStore interface {
	Init(ctx context.Context) error // ensure schema, health checks
	Insert(ctx context.Context, p *models.Post) error
	Exists(ctx context.Context, sourceID string) (bool, error)
	Query(ctx context.Context, f models.Filter, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context, f models.Filter) (int, error)
	Health(ctx context.Context) error
	Close() error
}

// Publisher emits analyzed-post events to a downstream transport.
type Publisher interface {
	Publish(ctx context.Context, p *models.Post) error
	Close() error
}

// Metrics records operational counters and latencies.
type Metrics interface {
	RecordIngested(channel string)
	RecordSkipped(reason string) // duplicate, filtered
	RecordFailed(stage string)
	RecordClassification(label string)
	RecordLatency(op string, seconds float64)
}
