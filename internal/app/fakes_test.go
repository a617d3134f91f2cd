package app_test

import (
	"context"
	"errors"
	"sync"

	"review_analyzer/internal/domain"
)

// ---- fakes ----

type stubScorer struct {
	scores map[string]float64
	calls  int
	mu     sync.Mutex
}

var errScore = errors.New("scorer unavailable")

func (s *stubScorer) Score(_ context.Context, text string) (domain.Sentiment, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if text == "FAIL" {
		return domain.Sentiment{}, errScore
	}
	return domain.Sentiment{Compound: s.scores[text]}, nil
}

type fakeRepo struct {
	mu        sync.Mutex
	reviews   []domain.Review
	appendErr error
}

func (f *fakeRepo) Append(_ context.Context, r domain.Review) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews = append(f.reviews, r)
	return nil
}

func (f *fakeRepo) List(_ context.Context, q domain.ReviewFilter) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Review
	for _, r := range f.reviews {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reviews), nil
}

type fakeCache struct {
	store map[string][]domain.ScoredReview
}

func (c *fakeCache) Get(_ context.Context, key string, dst any) (bool, error) {
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	*dst.(*[]domain.ScoredReview) = v
	return true, nil
}

func (c *fakeCache) Set(_ context.Context, key string, v any, _ int) error {
	if c.store == nil {
		c.store = map[string][]domain.ScoredReview{}
	}
	c.store[key] = v.([]domain.ScoredReview)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.ScoredReview
	err    error
}

func (p *fakePublisher) PublishReviewCreated(_ context.Context, r domain.ScoredReview) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, r)
	return p.err
}

// blockingPublisher holds every publish until its context ends.
type blockingPublisher struct {
	started chan struct{}
	done    chan error
}

func newBlockingPublisher() *blockingPublisher {
	return &blockingPublisher{started: make(chan struct{}, 1), done: make(chan error, 1)}
}

func (p *blockingPublisher) PublishReviewCreated(ctx context.Context, _ domain.ScoredReview) error {
	p.started <- struct{}{}
	<-ctx.Done()
	p.done <- ctx.Err()
	return ctx.Err()
}
