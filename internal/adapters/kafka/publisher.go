package kafkaad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"review_analyzer/internal/domain"
)

const eventReviewCreated = "review.created"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Publisher struct {
	w messageWriter
}

type reviewEvent struct {
	Type       string           `json:"type"`
	ReviewID   string           `json:"review_id"`
	Location   string           `json:"location"`
	ReviewBody string           `json:"review_body"`
	Timestamp  string           `json:"timestamp"`
	Sentiment  domain.Sentiment `json:"sentiment"`
}

func New(brokers []string, topic string) *Publisher {
	return NewWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	})
}

func NewWithWriter(w messageWriter) *Publisher {
	return &Publisher{w: w}
}

// PublishReviewCreated is keyed by review id so events for a review stay on one partition.
func (p *Publisher) PublishReviewCreated(ctx context.Context, r domain.ScoredReview) error {
	payload, err := json.Marshal(reviewEvent{
		Type:       eventReviewCreated,
		ReviewID:   r.ReviewID,
		Location:   r.Location,
		ReviewBody: r.ReviewBody,
		Timestamp:  r.Timestamp,
		Sentiment:  r.Sentiment,
	})
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(r.ReviewID),
		Value: payload,
	})
}

func (p *Publisher) Close() error { return p.w.Close() }
