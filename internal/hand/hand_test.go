package hand

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/randutil"
)

func parse(s string) Hand {
	return New(deck.MustParseCards(s)...)
}

func TestTotals(t *testing.T) {
	t.Parallel()
	tests := []struct {
		cards string
		hard  int
		total int
		soft  bool
		bust  bool
	}{
		{"Th6h", 16, 16, false, false},
		{"As6h", 7, 17, true, false},
		{"AsAh", 2, 12, true, false},
		{"AsAh9c", 11, 21, true, false},
		{"As6hTd", 17, 17, false, false},
		{"AsAhAdAc", 4, 14, true, false},
		{"ThTd5c", 25, 25, false, true},
		{"AsKd", 11, 21, true, false},
		{"9s7hAc", 17, 17, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.cards, func(t *testing.T) {
			h := parse(tt.cards)
			assert.Equal(t, tt.hard, h.HardTotal())
			assert.Equal(t, tt.total, h.Total())
			assert.Equal(t, tt.soft, h.IsSoft())
			assert.Equal(t, tt.bust, h.IsBust())
		})
	}
}

func TestBlackjack(t *testing.T) {
	t.Parallel()
	assert.True(t, parse("AsKd").IsBlackjack())
	assert.True(t, parse("TsAd").IsBlackjack())
	assert.False(t, parse("As5d5c").IsBlackjack(), "three card 21")

	split := parse("AsKd")
	split.FromSplit = true
	assert.False(t, split.IsBlackjack(), "split 21 is not a blackjack")
	assert.Equal(t, 21, split.Total())
}

func TestPairs(t *testing.T) {
	t.Parallel()
	assert.True(t, parse("8s8d").IsPair())
	assert.True(t, parse("KsQd").IsPair(), "ten-value cards pair")
	assert.Equal(t, 10, parse("KsQd").PairRank())
	assert.True(t, parse("AsAd").IsPairOfAces())
	assert.False(t, parse("8s9d").IsPair())
	assert.False(t, parse("8s8d8c").IsPair())
	assert.Equal(t, 0, parse("8s9d").PairRank())
}

// For every hand: hard <= soft <= hard+10 and soft-ness means the two differ
// with the soft total still live.
func TestTotalsProperty(t *testing.T) {
	t.Parallel()
	shoe, err := deck.NewShoe(randutil.New(11), 8, 1)
	if err != nil {
		t.Fatal(err)
	}
	for round := 0; round < 400; round++ {
		var h Hand
		n := 2 + round%5
		for i := 0; i < n; i++ {
			c, err := shoe.Deal()
			if err != nil {
				shoe.Reshuffle()
				c, _ = shoe.Deal()
			}
			h.Add(c)

			hard, soft := h.HardTotal(), h.SoftTotal()
			if hard > soft || soft > hard+10 {
				t.Fatalf("%v: hard=%d soft=%d out of bounds", h.Cards, hard, soft)
			}
			if h.IsSoft() != (soft != hard && soft <= 21) {
				t.Fatalf("%v: IsSoft=%v hard=%d soft=%d", h.Cards, h.IsSoft(), hard, soft)
			}
		}
	}
}

func TestString(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "As 6h (soft 17)", parse("As6h").String())
	assert.Equal(t, "As Kd (blackjack)", parse("AsKd").String())
	assert.Equal(t, "Ts Td 5c (bust 25)", parse("TsTd5c").String())
	assert.Equal(t, "Ts 6d (16)", parse("Ts6d").String())
}
