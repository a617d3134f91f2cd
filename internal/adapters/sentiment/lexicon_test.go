package sentiment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review_analyzer/internal/adapters/sentiment"
)

func TestLexicon_Polarity(t *testing.T) {
	lx := sentiment.NewLexicon()
	ctx := context.Background()

	pos, err := lx.Score(ctx, "The staff were wonderful and the room was great!")
	require.NoError(t, err)
	neg, err := lx.Score(ctx, "Terrible service, the food was awful and I hated it.")
	require.NoError(t, err)

	assert.Greater(t, pos.Compound, 0.0)
	assert.Less(t, neg.Compound, 0.0)
	for _, s := range []float64{pos.Compound, neg.Compound} {
		assert.GreaterOrEqual(t, s, -1.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestLexicon_Deterministic(t *testing.T) {
	lx := sentiment.NewLexicon()
	a, _ := lx.Score(context.Background(), "Pretty good tacos, slow service.")
	b, _ := lx.Score(context.Background(), "Pretty good tacos, slow service.")
	assert.Equal(t, a, b)
}
