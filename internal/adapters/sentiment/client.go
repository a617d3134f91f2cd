package sentiment

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"review_analyzer/internal/adapters/observability"
	"review_analyzer/internal/domain"
)

const polarityPath = "/polarity"

var (
	ErrUnauthorized = errors.New("sentiment api: unauthorized")
	ErrBadRequest   = errors.New("sentiment api: bad request")
)

// Client scores text through a remote polarity service that speaks the
// VADER score shape ({"neg","neu","pos","compound"}).
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
	cb   *gobreaker.CircuitBreaker
}

type scoreRequest struct {
	Text string `json:"text"`
}

const maxAttempts = 4

func NewClient(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("sentiment API base URL is required")
	}
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "sentiment-api",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 5
			},
			// a rejected text or a caller that gave up says nothing about the remote's health
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrBadRequest) || errors.Is(err, context.Canceled)
			},
		}),
	}, nil
}

// retryable marks an attempt failure worth another try, with the server's
// requested delay when it sent one.
type retryable struct {
	err   error
	after time.Duration
}

func (r *retryable) Error() string { return r.err.Error() }
func (r *retryable) Unwrap() error { return r.err }

// Score asks the remote service for a polarity score. Every HTTP attempt is a
// separate breaker call, so an outage opens the breaker after a handful of
// requests and the remaining retries stop at ErrOpenState.
func (c *Client) Score(ctx context.Context, text string) (domain.Sentiment, error) {
	payload, err := json.Marshal(scoreRequest{Text: text})
	if err != nil {
		return domain.Sentiment{}, err
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if err := c.rl.Wait(ctx); err != nil {
			return domain.Sentiment{}, err
		}
		res, err := c.cb.Execute(func() (interface{}, error) {
			return c.attempt(ctx, payload)
		})
		if err == nil {
			observability.ObserveSentiment("remote")
			return res.(domain.Sentiment), nil
		}

		var rt *retryable
		if !errors.As(err, &rt) {
			return domain.Sentiment{}, err
		}
		lastErr = rt.err
		wait := rt.after
		if wait == 0 {
			wait = backoff(i)
		}
		if i == maxAttempts-1 || !sleepCtx(ctx, wait) {
			break
		}
	}
	if ctx.Err() != nil {
		return domain.Sentiment{}, ctx.Err()
	}
	return domain.Sentiment{}, lastErr
}

// attempt performs one POST to the polarity endpoint. 429, transient 5xx and
// transport errors come back wrapped in *retryable.
func (c *Client) attempt(ctx context.Context, payload []byte) (domain.Sentiment, error) {
	var s domain.Sentiment
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+polarityPath, bytes.NewReader(payload))
	if err != nil {
		return s, err
	}
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "review-analyzer/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("sentiment-api", polarityPath, 0, time.Since(start))
		if ctx.Err() != nil {
			return s, ctx.Err()
		}
		return s, &retryable{err: err}
	}
	defer resp.Body.Close()
	observability.ObserveExternal("sentiment-api", polarityPath, resp.StatusCode, time.Since(start))

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
			return s, fmt.Errorf("sentiment api: decode: %w", err)
		}
		return s, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return s, ErrUnauthorized
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return s, fmt.Errorf("%w: %s", ErrBadRequest, snippet(resp.Body))
	case http.StatusTooManyRequests, http.StatusInternalServerError,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return s, &retryable{err: fmt.Errorf("sentiment api: remote %d", resp.StatusCode), after: retryAfter(resp)}
	default:
		return s, fmt.Errorf("sentiment api: bad status %d: %s", resp.StatusCode, snippet(resp.Body))
	}
}

func snippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	return strings.TrimSpace(string(b))
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
