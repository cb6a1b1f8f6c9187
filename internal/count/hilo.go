// Package count implements the Hi-Lo card counting system.
package count

import (
	"math"

	"github.com/lox/blackjack-trainer/internal/deck"
)

const (
	// DefaultGranularity estimates decks remaining to the nearest half deck
	DefaultGranularity = 0.5

	// MinDecksRemaining bounds the true count divisor away from zero
	MinDecksRemaining = 0.5
)

// HiLo returns the Hi-Lo tag of a card: +1 for 2-6, 0 for 7-9, -1 for tens and Aces
func HiLo(c deck.Card) int {
	switch v := c.Value(); {
	case v >= 2 && v <= 6:
		return 1
	case v >= 7 && v <= 9:
		return 0
	default:
		return -1
	}
}

// State is a point-in-time view of the count
type State struct {
	RunningCount   int     `json:"running_count"`
	CardsSeen      int     `json:"cards_seen"`
	CardsRemaining int     `json:"cards_remaining"`
	DecksRemaining float64 `json:"decks_remaining"`
	TrueCount      float64 `json:"true_count"`
}

// Index returns the true count as used for index plays and bet steps
func (s State) Index() int {
	return Index(s.TrueCount)
}

// Index truncates a true count toward zero, the way index numbers are read
// at the table (+2.9 plays as +2, -0.7 plays as 0).
func Index(trueCount float64) int {
	return int(trueCount)
}

// Counter keeps the running count for one shoe. It sees only cards that are
// face up; the dealer hole card is observed when it is turned over.
type Counter struct {
	running     int
	seen        int
	granularity float64
}

// NewCounter creates a counter estimating decks to the given granularity.
// A non-positive granularity uses the exact fractional deck count.
func NewCounter(granularity float64) *Counter {
	return &Counter{granularity: granularity}
}

// Observe adds one visible card to the count and returns its tag
func (c *Counter) Observe(card deck.Card) int {
	tag := HiLo(card)
	c.running += tag
	c.seen++
	return tag
}

// Reset zeroes the count; called when the shoe is reshuffled
func (c *Counter) Reset() {
	c.running = 0
	c.seen = 0
}

// RunningCount returns the cumulative Hi-Lo sum since the last shuffle
func (c *Counter) RunningCount() int {
	return c.running
}

// CardsSeen returns how many cards have been observed since the last shuffle
func (c *Counter) CardsSeen() int {
	return c.seen
}

// Granularity returns the deck estimation step
func (c *Counter) Granularity() float64 {
	return c.granularity
}

// DecksRemaining estimates decks left from the cards physically remaining in
// the shoe, rounded to the counter's granularity and floored at half a deck.
func (c *Counter) DecksRemaining(cardsRemaining int) float64 {
	decks := float64(cardsRemaining) / deck.CardsPerDeck
	if c.granularity > 0 {
		decks = math.Round(decks/c.granularity) * c.granularity
	}
	return math.Max(decks, MinDecksRemaining)
}

// TrueCount converts the running count to a per-deck count. It is derived
// fresh on every call because cards remaining changes with every deal.
func (c *Counter) TrueCount(cardsRemaining int) float64 {
	return float64(c.running) / c.DecksRemaining(cardsRemaining)
}

// Snapshot captures the count against the given shoe depth
func (c *Counter) Snapshot(cardsRemaining int) State {
	decks := c.DecksRemaining(cardsRemaining)
	return State{
		RunningCount:   c.running,
		CardsSeen:      c.seen,
		CardsRemaining: cardsRemaining,
		DecksRemaining: decks,
		TrueCount:      float64(c.running) / decks,
	}
}
