package session

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lox/blackjack-trainer/internal/betting"
)

// RiskProfile sets bankroll limits for a session
type RiskProfile struct {
	Name            string  `json:"name"`
	KellyMultiplier float64 `json:"kelly_multiplier"`
	MaxBetFraction  float64 `json:"max_bet_fraction"` // of current bankroll
	StopLoss        float64 `json:"stop_loss"`        // fraction of the starting bankroll
	StopWin         float64 `json:"stop_win"`
}

var (
	Conservative = RiskProfile{Name: "conservative", KellyMultiplier: 0.25, MaxBetFraction: 0.01, StopLoss: 0.30, StopWin: 0.50}
	Medium       = RiskProfile{Name: "medium", KellyMultiplier: 0.50, MaxBetFraction: 0.02, StopLoss: 0.40, StopWin: 0.75}
	Aggressive   = RiskProfile{Name: "aggressive", KellyMultiplier: 0.75, MaxBetFraction: 0.03, StopLoss: 0.50, StopWin: 1.00}
)

// ParseRiskProfile looks up a named profile
func ParseRiskProfile(name string) (RiskProfile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "conservative":
		return Conservative, nil
	case "medium", "":
		return Medium, nil
	case "aggressive":
		return Aggressive, nil
	}
	return RiskProfile{}, fmt.Errorf("unknown risk profile %q", name)
}

// Kelly returns Kelly sizing at the profile's multiplier
func (p RiskProfile) Kelly() betting.Kelly {
	return betting.Kelly{Variance: betting.DefaultVariance, Multiplier: p.KellyMultiplier}
}

// MaxBet is the largest bet the profile allows at the given bankroll
func (p RiskProfile) MaxBet(bankroll decimal.Decimal) decimal.Decimal {
	return bankroll.Mul(decimal.NewFromFloat(p.MaxBetFraction))
}

// ShouldStopLoss reports whether losses have reached the stop-loss fraction
func (p RiskProfile) ShouldStopLoss(start, current decimal.Decimal) bool {
	if !start.IsPositive() || p.StopLoss <= 0 {
		return false
	}
	loss := start.Sub(current).Div(start)
	return loss.GreaterThanOrEqual(decimal.NewFromFloat(p.StopLoss))
}

// ShouldStopWin reports whether profit has reached the stop-win fraction
func (p RiskProfile) ShouldStopWin(start, current decimal.Decimal) bool {
	if !start.IsPositive() || p.StopWin <= 0 {
		return false
	}
	profit := current.Sub(start).Div(start)
	return profit.GreaterThanOrEqual(decimal.NewFromFloat(p.StopWin))
}
