package domain

import "context"

type ReviewRepository interface {
	// Write path
	Append(ctx context.Context, r Review) error

	// Read paths
	List(ctx context.Context, f ReviewFilter) ([]Review, error)
	Count(ctx context.Context) (int, error)
}

type SentimentScorer interface {
	Score(ctx context.Context, text string) (Sentiment, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
}

type EventPublisher interface {
	PublishReviewCreated(ctx context.Context, r ScoredReview) error
}
