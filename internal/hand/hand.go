// Package hand evaluates blackjack hands.
//
// Totals are computed by counting every Ace as 1 and then promoting a single
// Ace to 11 when that does not bust the hand. A hand is soft exactly when that
// promotion happened. Evaluation is pure: nothing here mutates the hand.
package hand

import (
	"strconv"
	"strings"

	"github.com/lox/blackjack-trainer/internal/deck"
)

// Blackjack is the target total
const Blackjack = 21

// Hand is an ordered set of cards held by one player spot or the dealer
type Hand struct {
	Cards []deck.Card

	// FromSplit marks hands created by splitting. A two-card 21 on a split
	// hand is an ordinary 21, not a blackjack.
	FromSplit bool
}

// New creates a hand from the given cards
func New(cards ...deck.Card) Hand {
	h := Hand{Cards: make([]deck.Card, len(cards))}
	copy(h.Cards, cards)
	return h
}

// Add appends a card to the hand
func (h *Hand) Add(c deck.Card) {
	h.Cards = append(h.Cards, c)
}

// Len returns the number of cards in the hand
func (h Hand) Len() int {
	return len(h.Cards)
}

// HardTotal counts every Ace as 1
func (h Hand) HardTotal() int {
	total := 0
	for _, c := range h.Cards {
		total += c.Value()
	}
	return total
}

// SoftTotal is the hard total with one Ace promoted to 11 when that stays at
// or under 21. Without such an Ace it equals the hard total.
func (h Hand) SoftTotal() int {
	hard := h.HardTotal()
	if h.hasAce() && hard+10 <= Blackjack {
		return hard + 10
	}
	return hard
}

// Total returns the best total for the hand
func (h Hand) Total() int {
	return h.SoftTotal()
}

// IsSoft reports whether an Ace is currently counted as 11
func (h Hand) IsSoft() bool {
	return h.SoftTotal() != h.HardTotal()
}

// IsBust reports whether the hand exceeds 21 with all Aces counted as 1
func (h Hand) IsBust() bool {
	return h.HardTotal() > Blackjack
}

// IsBlackjack reports a natural: two cards totalling 21 on an unsplit hand
func (h Hand) IsBlackjack() bool {
	return len(h.Cards) == 2 && !h.FromSplit && h.Total() == Blackjack
}

// IsPair reports two cards of equal blackjack value, so K-Q is a pair
func (h Hand) IsPair() bool {
	return len(h.Cards) == 2 && h.Cards[0].Value() == h.Cards[1].Value()
}

// PairRank returns the rank value of a pair (1 for Aces, 10 for tens), or 0
func (h Hand) PairRank() int {
	if !h.IsPair() {
		return 0
	}
	return h.Cards[0].Value()
}

// IsPairOfAces reports a pair of Aces
func (h Hand) IsPairOfAces() bool {
	return h.IsPair() && h.Cards[0].IsAce()
}

func (h Hand) hasAce() bool {
	for _, c := range h.Cards {
		if c.IsAce() {
			return true
		}
	}
	return false
}

// String renders the hand as its cards and best total, e.g. "As 6h (soft 17)"
func (h Hand) String() string {
	parts := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		parts[i] = c.String()
	}
	var b strings.Builder
	b.WriteString(strings.Join(parts, " "))
	b.WriteString(" (")
	switch {
	case h.IsBlackjack():
		b.WriteString("blackjack")
	case h.IsBust():
		b.WriteString("bust ")
		b.WriteString(strconv.Itoa(h.HardTotal()))
	case h.IsSoft():
		b.WriteString("soft ")
		b.WriteString(strconv.Itoa(h.Total()))
	default:
		b.WriteString(strconv.Itoa(h.Total()))
	}
	b.WriteString(")")
	return b.String()
}

