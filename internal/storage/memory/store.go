package memory

import (
	"context"
	"sync"

	"review_analyzer/internal/domain"
)

// Store is an append-only, process-local review collection.
type Store struct {
	mu      sync.RWMutex
	reviews []domain.Review
}

func New(seed []domain.Review) *Store {
	rs := make([]domain.Review, len(seed))
	copy(rs, seed)
	return &Store{reviews: rs}
}

// Append refuses to store once ctx is done, so a caller that gave up never
// leaves a review behind.
func (s *Store) Append(ctx context.Context, r domain.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.reviews = append(s.reviews, r)
	s.mu.Unlock()
	return nil
}

// List scans the whole collection; results keep insertion order.
func (s *Store) List(_ context.Context, f domain.ReviewFilter) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Review, 0, len(s.reviews))
	for _, r := range s.reviews {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviews), nil
}
