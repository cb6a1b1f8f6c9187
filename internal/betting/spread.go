// Package betting sizes wagers from the true count. Everything here is pure:
// nothing reads or mutates the shoe or the counter.
package betting

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/lox/blackjack-trainer/internal/count"
)

// DefaultMaxSpread is the largest bet, in units, the default spread allows
const DefaultMaxSpread = 12

// Step is one row of a spread table. It applies from TrueCount upward until
// the next step. The lowest step also covers every count below it.
type Step struct {
	TrueCount int `json:"true_count"`
	Units     int `json:"units"`
	MaxUnits  int `json:"max_units"`
}

// Spread maps true count to bet units
type Spread struct {
	Steps []Step
}

// DefaultSpread is the 1-12 spread: +1 or less one unit, +2 two to three,
// +3 four to five, +4 six to eight, +5 and above eight to twelve.
func DefaultSpread() Spread {
	return Spread{Steps: []Step{
		{TrueCount: 1, Units: 1, MaxUnits: 1},
		{TrueCount: 2, Units: 2, MaxUnits: 3},
		{TrueCount: 3, Units: 4, MaxUnits: 5},
		{TrueCount: 4, Units: 6, MaxUnits: 8},
		{TrueCount: 5, Units: 8, MaxUnits: 12},
	}}
}

// Validate checks the table is non-empty and monotonic
func (s Spread) Validate() error {
	if len(s.Steps) == 0 {
		return errors.New("betting: spread has no steps")
	}
	for i, st := range s.Steps {
		if st.Units < 1 || st.MaxUnits < st.Units {
			return fmt.Errorf("betting: step %d: units must satisfy 1 <= units <= max_units", i)
		}
		if i == 0 {
			continue
		}
		prev := s.Steps[i-1]
		if st.TrueCount <= prev.TrueCount {
			return fmt.Errorf("betting: step %d: true counts must increase", i)
		}
		if st.Units < prev.Units || st.MaxUnits < prev.MaxUnits {
			return fmt.Errorf("betting: step %d: units must not decrease", i)
		}
	}
	return nil
}

// Recommendation is a sized bet
type Recommendation struct {
	TrueCount float64         `json:"true_count"`
	Index     int             `json:"index"`
	Units     int             `json:"units"`
	MaxUnits  int             `json:"max_units"`
	Amount    decimal.Decimal `json:"amount"`
}

func (r Recommendation) String() string {
	if r.MaxUnits > r.Units {
		return fmt.Sprintf("%d-%d units (%s) at TC %+.1f", r.Units, r.MaxUnits, r.Amount.StringFixed(2), r.TrueCount)
	}
	return fmt.Sprintf("%d units (%s) at TC %+.1f", r.Units, r.Amount.StringFixed(2), r.TrueCount)
}

// Recommend looks up the step for the truncated true count, caps both ends
// of the range at maxSpread units and prices the low end at minBet per unit.
func (s Spread) Recommend(trueCount float64, minBet decimal.Decimal, maxSpread int) Recommendation {
	index := count.Index(trueCount)
	step := s.step(index)
	if maxSpread < 1 {
		maxSpread = 1
	}
	units := min(step.Units, maxSpread)
	maxUnits := min(step.MaxUnits, maxSpread)
	return Recommendation{
		TrueCount: trueCount,
		Index:     index,
		Units:     units,
		MaxUnits:  maxUnits,
		Amount:    minBet.Mul(decimal.NewFromInt(int64(units))),
	}
}

// MaxUnits is the top of the table
func (s Spread) MaxUnits() int {
	if len(s.Steps) == 0 {
		return 1
	}
	return s.Steps[len(s.Steps)-1].MaxUnits
}

func (s Spread) step(index int) Step {
	if len(s.Steps) == 0 {
		return Step{Units: 1, MaxUnits: 1}
	}
	i, found := slices.BinarySearchFunc(s.Steps, index, func(st Step, target int) int {
		return st.TrueCount - target
	})
	if found {
		return s.Steps[i]
	}
	if i == 0 {
		return s.Steps[0]
	}
	return s.Steps[i-1]
}

// WongOut reports whether the count is poor enough to leave the table
func WongOut(trueCount float64) bool {
	return trueCount <= -2
}
