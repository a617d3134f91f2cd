package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"review_analyzer/internal/domain"
)

// eventTimeout bounds a single review.created publish.
const eventTimeout = 5 * time.Second

type Submission struct {
	Location   string
	ReviewBody string
}

type CommandService struct {
	repo    domain.ReviewRepository
	scorer  domain.SentimentScorer
	events  domain.EventPublisher // optional
	clock   clockwork.Clock
	allowed map[string]struct{}

	pending sync.WaitGroup // in-flight event publishes
}

func NewCommandService(r domain.ReviewRepository, s domain.SentimentScorer, ev domain.EventPublisher, clock clockwork.Clock, allowed []string) *CommandService {
	set := make(map[string]struct{}, len(allowed))
	for _, l := range allowed {
		set[l] = struct{}{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CommandService{repo: r, scorer: s, events: ev, clock: clock, allowed: set}
}

// SubmitReview validates, scores and appends a new review. Nothing is stored
// unless every step before the append succeeds.
func (s *CommandService) SubmitReview(ctx context.Context, sub Submission) (domain.ScoredReview, error) {
	if sub.Location == "" || sub.ReviewBody == "" {
		return domain.ScoredReview{}, domain.ErrMissingFields
	}
	if _, ok := s.allowed[sub.Location]; !ok {
		return domain.ScoredReview{}, domain.ErrInvalidLocation
	}

	sent, err := s.scorer.Score(ctx, sub.ReviewBody)
	if err != nil {
		return domain.ScoredReview{}, fmt.Errorf("score review: %w", err)
	}

	out := domain.ScoredReview{
		Review: domain.Review{
			ReviewID:   uuid.NewString(),
			Location:   sub.Location,
			ReviewBody: sub.ReviewBody,
			Timestamp:  s.clock.Now().Format(domain.TimestampLayout),
		},
		Sentiment: sent,
	}
	if err := s.repo.Append(ctx, out.Review); err != nil {
		return domain.ScoredReview{}, fmt.Errorf("append review: %w", err)
	}
	log.Info().Str("review_id", out.ReviewID).Str("location", out.Location).Msg("review created")

	if s.events != nil {
		s.pending.Add(1)
		go s.publish(context.WithoutCancel(ctx), out)
	}
	return out, nil
}

// publish runs detached from the request; the review is already stored and
// the response must not wait on the broker.
func (s *CommandService) publish(ctx context.Context, r domain.ScoredReview) {
	defer s.pending.Done()
	ctx, cancel := context.WithTimeout(ctx, eventTimeout)
	defer cancel()
	if err := s.events.PublishReviewCreated(ctx, r); err != nil {
		log.Warn().Err(err).Str("review_id", r.ReviewID).Msg("publish review.created failed")
	}
}

// Wait blocks until every in-flight event publish has finished.
func (s *CommandService) Wait() { s.pending.Wait() }
