package domain

import (
	"fmt"
	"net/url"
	"time"
)

const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// Review is one stored customer review. Timestamp is kept in its wire form
// so loaded rows round-trip exactly as they appear in the data file.
type Review struct {
	ReviewID   string `json:"ReviewId"`
	Location   string `json:"Location"`
	ReviewBody string `json:"ReviewBody"`
	Timestamp  string `json:"Timestamp"`
}

func (r Review) Time() (time.Time, error) {
	return time.Parse(TimestampLayout, r.Timestamp)
}

// Sentiment mirrors the VADER polarity score.
type Sentiment struct {
	Neg      float64 `json:"neg"`
	Neu      float64 `json:"neu"`
	Pos      float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

type ScoredReview struct {
	Review
	Sentiment Sentiment `json:"sentiment"`
}

// ReviewFilter selects reviews by exact location and an inclusive date range.
// Zero values disable the corresponding predicate.
type ReviewFilter struct {
	Location string
	Start    time.Time // first day, inclusive
	End      time.Time // last day, inclusive
}

// ParseFilter builds a filter from raw query values. Empty strings are no-ops.
func ParseFilter(location, startDate, endDate string) (ReviewFilter, error) {
	f := ReviewFilter{Location: location}
	if startDate != "" {
		t, err := time.Parse(DateLayout, startDate)
		if err != nil {
			return ReviewFilter{}, fmt.Errorf("%w: start_date %q must be YYYY-MM-DD", ErrInvalidDate, startDate)
		}
		f.Start = t
	}
	if endDate != "" {
		t, err := time.Parse(DateLayout, endDate)
		if err != nil {
			return ReviewFilter{}, fmt.Errorf("%w: end_date %q must be YYYY-MM-DD", ErrInvalidDate, endDate)
		}
		f.End = t
	}
	return f, nil
}

// Until is the exclusive upper bound implied by End (midnight of the next day).
func (f ReviewFilter) Until() time.Time {
	if f.End.IsZero() {
		return time.Time{}
	}
	return f.End.AddDate(0, 0, 1)
}

func (f ReviewFilter) Matches(r Review) bool {
	if f.Location != "" && r.Location != f.Location {
		return false
	}
	if f.Start.IsZero() && f.End.IsZero() {
		return true
	}
	ts, err := r.Time()
	if err != nil {
		return false
	}
	if !f.Start.IsZero() && ts.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && !ts.Before(f.Until()) {
		return false
	}
	return true
}

// Key is a stable cache key fragment for the filter. Values are escaped so a
// location can never spell out another filter's date bounds.
func (f ReviewFilter) Key() string {
	v := url.Values{"loc": {f.Location}}
	if !f.Start.IsZero() {
		v.Set("from", f.Start.Format(DateLayout))
	}
	if !f.End.IsZero() {
		v.Set("to", f.End.Format(DateLayout))
	}
	return v.Encode()
}
