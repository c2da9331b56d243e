package repository

import (
	"context"
	"sort"
	"sync"

	"StockPulse/internal/domain/models"
	domrepo "StockPulse/internal/domain/repository"
)

// MemoryPostStore is an in-process PostStore keyed by SourceID. The map key
// doubles as the uniqueness constraint, so concurrent batches racing on the
// same item resolve to exactly one stored post. Used for tests and the
// "memory" storage backend.
type MemoryPostStore struct {
	mu    sync.RWMutex
	posts map[string]*models.Post
}

// NewMemoryPostStore creates an empty in-memory store.
func NewMemoryPostStore() *MemoryPostStore {
	return &MemoryPostStore{posts: make(map[string]*models.Post)}
}

func (s *MemoryPostStore) Init(ctx context.Context) error { return nil }

func (s *MemoryPostStore) Insert(ctx context.Context, p *models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[p.SourceID]; ok {
		return models.ErrDuplicatePost
	}
	cp := *p
	s.posts[p.SourceID] = &cp
	return nil
}

func (s *MemoryPostStore) Exists(ctx context.Context, sourceID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.posts[sourceID]
	return ok, nil
}

func (s *MemoryPostStore) Query(ctx context.Context, f models.Filter, limit, offset int) ([]*models.Post, error) {
	s.mu.RLock()
	matched := make([]*models.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if f.Matches(p) {
			matched = append(matched, p)
		}
	}
	s.mu.RUnlock()

	// Newest first, source ID as tie-break for a stable order.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].SourceID < matched[j].SourceID
	})

	if offset > 0 {
		if offset >= len(matched) {
			return nil, nil
		}
		matched = matched[offset:]
	}
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *MemoryPostStore) Count(ctx context.Context, f models.Filter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.posts {
		if f.Matches(p) {
			n++
		}
	}
	return n, nil
}

func (s *MemoryPostStore) Health(ctx context.Context) error { return nil }

func (s *MemoryPostStore) Close() error { return nil }

var _ domrepo.PostStore = (*MemoryPostStore)(nil)
