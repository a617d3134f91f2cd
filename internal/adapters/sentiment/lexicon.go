package sentiment

import (
	"context"
	"math"

	"github.com/jonreiter/govader"

	"review_analyzer/internal/adapters/observability"
	"review_analyzer/internal/domain"
)

// Lexicon scores text in-process with the VADER lexicon. The analyzer is
// read-only after construction and safe to share across requests.
type Lexicon struct {
	sia *govader.SentimentIntensityAnalyzer
}

func NewLexicon() *Lexicon {
	return &Lexicon{sia: govader.NewSentimentIntensityAnalyzer()}
}

func (l *Lexicon) Score(_ context.Context, text string) (domain.Sentiment, error) {
	s := l.sia.PolarityScores(text)
	observability.ObserveSentiment("lexicon")
	return domain.Sentiment{
		Neg:      round(s.Negative, 3),
		Neu:      round(s.Neutral, 3),
		Pos:      round(s.Positive, 3),
		Compound: round(s.Compound, 4),
	}, nil
}

func round(f float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(f*p) / p
}
