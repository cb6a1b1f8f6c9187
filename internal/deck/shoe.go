package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

const (
	// CardsPerDeck is the size of one standard deck
	CardsPerDeck = 52

	// DefaultDecks is the usual shoe size
	DefaultDecks = 6

	// DefaultPenetration places the cut card three quarters into the shoe
	DefaultPenetration = 0.75
)

// ErrShoeExhausted is returned when a card is requested from an empty shoe.
// Under correct round sequencing it never happens: the cut card forces a
// reshuffle long before the shoe runs out.
var ErrShoeExhausted = errors.New("deck: shoe exhausted")

// Shoe holds one or more shuffled decks and tracks how deep into them play has gone
type Shoe struct {
	cards       []Card
	dealt       int
	decks       int
	penetration float64
	cut         int
	rng         *rand.Rand // nil for stacked shoes, which never reshuffle
}

// NewShoe builds and shuffles a shoe of the given number of decks. The cut card
// sits at floor(total * penetration).
func NewShoe(rng *rand.Rand, decks int, penetration float64) (*Shoe, error) {
	if rng == nil {
		panic("rng is required for shoe creation")
	}
	if decks < 1 {
		return nil, fmt.Errorf("deck count must be positive, got %d", decks)
	}
	if penetration <= 0 || penetration > 1 {
		return nil, fmt.Errorf("penetration must be in (0, 1], got %.3f", penetration)
	}

	s := &Shoe{
		cards:       make([]Card, 0, decks*CardsPerDeck),
		decks:       decks,
		penetration: penetration,
		rng:         rng,
	}
	s.Reshuffle()
	return s, nil
}

// NewStackedShoe returns a shoe that deals cards in exactly the given order.
// Reshuffling a stacked shoe restores the original order. Used for tests and
// replaying recorded rounds.
func NewStackedShoe(cards []Card, penetration float64) *Shoe {
	stacked := make([]Card, len(cards))
	copy(stacked, cards)
	s := &Shoe{
		cards:       stacked,
		decks:       max(1, (len(cards)+CardsPerDeck-1)/CardsPerDeck),
		penetration: penetration,
	}
	s.cut = int(float64(len(stacked)) * penetration)
	return s
}

// Reshuffle rebuilds the full shoe, shuffles it and resets the dealt count
func (s *Shoe) Reshuffle() {
	s.dealt = 0
	if s.rng == nil {
		return
	}

	s.cards = s.cards[:0]
	for range s.decks {
		for suit := Spades; suit <= Clubs; suit++ {
			for rank := Ace; rank <= King; rank++ {
				s.cards = append(s.cards, NewCard(rank, suit))
			}
		}
	}

	// Fisher-Yates
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
	s.cut = int(float64(len(s.cards)) * s.penetration)
}

// Deal removes and returns the next card
func (s *Shoe) Deal() (Card, error) {
	if s.dealt >= len(s.cards) {
		return Card{}, ErrShoeExhausted
	}
	card := s.cards[s.dealt]
	s.dealt++
	return card, nil
}

// NeedsReshuffle reports whether the cut card has been reached
func (s *Shoe) NeedsReshuffle() bool {
	return s.dealt >= s.cut
}

// CardsDealt returns the number of cards dealt since the last shuffle
func (s *Shoe) CardsDealt() int {
	return s.dealt
}

// CardsRemaining returns the number of cards physically left in the shoe
func (s *Shoe) CardsRemaining() int {
	return len(s.cards) - s.dealt
}

// TotalCards returns the size of the full shoe
func (s *Shoe) TotalCards() int {
	return len(s.cards)
}

// CutCardPosition returns the dealt count at which a reshuffle is due
func (s *Shoe) CutCardPosition() int {
	return s.cut
}

// Decks returns the number of decks the shoe is built from
func (s *Shoe) Decks() int {
	return s.decks
}

// Remaining returns a copy of the undealt cards in dealing order
func (s *Shoe) Remaining() []Card {
	out := make([]Card, s.CardsRemaining())
	copy(out, s.cards[s.dealt:])
	return out
}
