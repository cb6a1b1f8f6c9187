package deck

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack-trainer/internal/randutil"
)

func TestNewShoeComposition(t *testing.T) {
	t.Parallel()
	shoe, err := NewShoe(randutil.New(1), 6, 0.75)
	require.NoError(t, err)

	assert.Equal(t, 312, shoe.TotalCards())
	assert.Equal(t, 312, shoe.CardsRemaining())
	assert.Equal(t, 234, shoe.CutCardPosition())

	counts := make(map[Card]int)
	for _, c := range shoe.Remaining() {
		counts[c]++
	}
	assert.Len(t, counts, 52)
	for c, n := range counts {
		assert.Equal(t, 6, n, "card %s", c)
	}
}

func TestNewShoeRejectsBadInput(t *testing.T) {
	t.Parallel()
	_, err := NewShoe(randutil.New(1), 0, 0.75)
	assert.Error(t, err)
	_, err = NewShoe(randutil.New(1), 6, 0)
	assert.Error(t, err)
	_, err = NewShoe(randutil.New(1), 6, 1.5)
	assert.Error(t, err)
}

func TestShoeDealTracksCounts(t *testing.T) {
	t.Parallel()
	shoe, err := NewShoe(randutil.New(2), 1, 0.5)
	require.NoError(t, err)

	for i := 0; i < 26; i++ {
		assert.False(t, shoe.NeedsReshuffle(), "card %d", i)
		_, err := shoe.Deal()
		require.NoError(t, err)
		assert.Equal(t, shoe.TotalCards()-shoe.CardsDealt(), shoe.CardsRemaining())
	}
	assert.True(t, shoe.NeedsReshuffle())
}

func TestShoeExhausted(t *testing.T) {
	t.Parallel()
	shoe := NewStackedShoe(MustParseCards("AsKs"), 1)
	_, err := shoe.Deal()
	require.NoError(t, err)
	_, err = shoe.Deal()
	require.NoError(t, err)

	_, err = shoe.Deal()
	assert.True(t, errors.Is(err, ErrShoeExhausted))
	assert.Equal(t, 2, shoe.CardsDealt())
}

func TestReshuffleResetsDealt(t *testing.T) {
	t.Parallel()
	shoe, err := NewShoe(randutil.New(3), 2, 0.75)
	require.NoError(t, err)
	for i := 0; i < 80; i++ {
		_, err := shoe.Deal()
		require.NoError(t, err)
	}
	shoe.Reshuffle()
	assert.Equal(t, 0, shoe.CardsDealt())
	assert.Equal(t, 104, shoe.CardsRemaining())
}

func TestShoeIsDeterministicForSeed(t *testing.T) {
	t.Parallel()
	a, err := NewShoe(randutil.New(42), 6, 0.75)
	require.NoError(t, err)
	b, err := NewShoe(randutil.New(42), 6, 0.75)
	require.NoError(t, err)
	assert.Equal(t, a.Remaining(), b.Remaining())
}

func TestStackedShoeDealsInOrder(t *testing.T) {
	t.Parallel()
	cards := MustParseCards("2h3h4h")
	shoe := NewStackedShoe(cards, 1)
	for _, want := range cards {
		got, err := shoe.Deal()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
