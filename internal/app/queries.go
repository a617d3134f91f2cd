package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"review_analyzer/internal/domain"
)

type QueryService struct {
	repo     domain.ReviewRepository
	scorer   domain.SentimentScorer
	cache    domain.Cache // optional
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, s domain.SentimentScorer, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, scorer: s, cache: c, cacheTTL: ttl}
}

// ListReviews returns the reviews matching f, each scored, ordered by
// compound sentiment descending. Ties keep storage order.
func (s *QueryService) ListReviews(ctx context.Context, f domain.ReviewFilter) ([]domain.ScoredReview, error) {
	// The collection only grows, so its size versions the cache key and any
	// append makes older entries unreachable.
	var key string
	if s.cache != nil {
		if n, err := s.repo.Count(ctx); err == nil {
			key = fmt.Sprintf("reviews:%d:%s", n, f.Key())
			var cached []domain.ScoredReview
			if ok, _ := s.cache.Get(ctx, key, &cached); ok {
				return cached, nil
			}
		}
	}

	rs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	out := make([]domain.ScoredReview, 0, len(rs))
	for _, r := range rs {
		sent, err := s.scorer.Score(ctx, r.ReviewBody)
		if err != nil {
			return nil, fmt.Errorf("score review %s: %w", r.ReviewID, err)
		}
		out = append(out, domain.ScoredReview{Review: r, Sentiment: sent})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Sentiment.Compound > out[j].Sentiment.Compound
	})

	if key != "" {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}
