package strategy

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/hand"
)

// Category selects which kind of hand a deviation applies to
type Category int

const (
	HardHand Category = iota
	SoftHand
	PairHand
)

func (c Category) String() string {
	switch c {
	case HardHand:
		return "hard"
	case SoftHand:
		return "soft"
	case PairHand:
		return "pair"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory parses "hard", "soft" or "pair"
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hard":
		return HardHand, nil
	case "soft":
		return SoftHand, nil
	case "pair", "pairs":
		return PairHand, nil
	}
	return 0, fmt.Errorf("unknown hand category %q", s)
}

// Deviation overrides the table play once the true count index reaches
// Threshold, or while it is under Threshold when Below is set. Total is the
// hand total, or the pair rank value for PairHand. DealerUp is the up-card
// value with 1 for an Ace.
type Deviation struct {
	Category  Category
	Total     int
	DealerUp  int
	Threshold int
	Action    Action
	Below     bool
}

func (d Deviation) String() string {
	up := "A"
	if d.DealerUp != 1 {
		up = fmt.Sprint(d.DealerUp)
	}
	when := "at"
	if d.Below {
		when = "below"
	}
	return fmt.Sprintf("%s %d v %s: %s %s %+d", d.Category, d.Total, up, d.Action, when, d.Threshold)
}

// Applies reports whether the deviation is active at the given index
func (d Deviation) Applies(index int) bool {
	if d.Below {
		return index < d.Threshold
	}
	return index >= d.Threshold
}

// Validate checks the deviation refers to a reachable table cell
func (d Deviation) Validate() error {
	if d.DealerUp < 1 || d.DealerUp > 10 {
		return fmt.Errorf("deviation %s: dealer up-card must be 1-10", d)
	}
	if !d.Action.Valid() {
		return fmt.Errorf("deviation %s: invalid action", d)
	}
	switch d.Category {
	case HardHand:
		if d.Total < 4 || d.Total > 21 {
			return fmt.Errorf("deviation %s: hard total must be 4-21", d)
		}
	case SoftHand:
		if d.Total < 12 || d.Total > 21 {
			return fmt.Errorf("deviation %s: soft total must be 12-21", d)
		}
	case PairHand:
		if d.Total < 1 || d.Total > 10 {
			return fmt.Errorf("deviation %s: pair rank must be 1-10", d)
		}
	default:
		return fmt.Errorf("deviation %s: unknown category", d)
	}
	return nil
}

// DefaultInsuranceIndex is the true count at which insurance becomes correct
const DefaultInsuranceIndex = 3

// DefaultDeviations returns the standard Hi-Lo index plays. Hard 13 v 2 is a
// stand in the tables so its index is expressed as a hit under -1.
func DefaultDeviations() []Deviation {
	return []Deviation{
		{Category: HardHand, Total: 16, DealerUp: 10, Threshold: 0, Action: Stand},
		{Category: HardHand, Total: 15, DealerUp: 10, Threshold: 4, Action: Stand},
		{Category: HardHand, Total: 12, DealerUp: 3, Threshold: 2, Action: Stand},
		{Category: HardHand, Total: 12, DealerUp: 2, Threshold: 3, Action: Stand},
		{Category: HardHand, Total: 13, DealerUp: 2, Threshold: -1, Action: Hit, Below: true},
		{Category: PairHand, Total: 10, DealerUp: 5, Threshold: 5, Action: Split},
		{Category: PairHand, Total: 10, DealerUp: 6, Threshold: 4, Action: Split},
	}
}

// classify returns the category and row key the hand is played under.
// A pair is only treated as a pair while splitting is legal.
func classify(h hand.Hand, canSplit bool) (Category, int) {
	if canSplit && h.IsPair() {
		return PairHand, h.Cards[0].Value()
	}
	if h.IsSoft() {
		return SoftHand, h.SoftTotal()
	}
	return HardHand, h.HardTotal()
}

func (d Deviation) matches(cat Category, key int, up deck.Card) bool {
	return d.Category == cat && d.Total == key && d.DealerUp == up.Value()
}
