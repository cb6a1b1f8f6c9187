package betting

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// EdgePerTrueCount is the player advantage gained per true count point
	EdgePerTrueCount = 0.005
	// DefaultVariance is the per-hand variance of blackjack in squared units
	DefaultVariance = 1.3
	// DefaultKellyMultiplier is half Kelly
	DefaultKellyMultiplier = 0.5
)

// Kelly sizes bets as a fraction of bankroll proportional to the edge
type Kelly struct {
	Variance   float64
	Multiplier float64
}

// DefaultKelly returns half Kelly with the default variance estimate
func DefaultKelly() Kelly {
	return Kelly{Variance: DefaultVariance, Multiplier: DefaultKellyMultiplier}
}

// Edge estimates the player advantage at a true count
func Edge(trueCount float64) float64 {
	return trueCount * EdgePerTrueCount
}

// Fraction is the full Kelly fraction edge / variance. It is negative when
// the edge is.
func (k Kelly) Fraction(trueCount float64) float64 {
	v := k.Variance
	if v <= 0 {
		v = DefaultVariance
	}
	return Edge(trueCount) / v
}

// Bet applies the multiplier to the Kelly fraction of bankroll, rounds to
// whole minBet units and clamps to the table limits. Without an edge the
// answer is the table minimum.
func (k Kelly) Bet(bankroll decimal.Decimal, trueCount float64, minBet, maxBet decimal.Decimal) decimal.Decimal {
	f := k.Fraction(trueCount) * k.Multiplier
	if f <= 0 || !minBet.IsPositive() {
		return minBet
	}
	raw := bankroll.Mul(decimal.NewFromFloat(f))
	units := raw.Div(minBet).Round(0)
	bet := units.Mul(minBet)
	if bet.LessThan(minBet) {
		return minBet
	}
	if maxBet.IsPositive() && bet.GreaterThan(maxBet) {
		return maxBet
	}
	return bet
}

// RiskOfRuin approximates the probability, as a percentage, of losing a
// bankroll of bankroll/avgBet units at the given per-hand win rate in units.
func RiskOfRuin(bankroll, avgBet decimal.Decimal, winRate float64) float64 {
	if !avgBet.IsPositive() {
		return 0
	}
	if winRate <= 0 {
		return 100
	}
	units := bankroll.Div(avgBet).InexactFloat64()
	return math.Min(100, math.Exp(-2*winRate*units)*100)
}
