package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lox/blackjack-trainer/internal/betting"
)

// Summary is the end-of-session record persisted to history
type Summary struct {
	ID               uuid.UUID       `json:"id"`
	Variant          string          `json:"variant,omitempty"`
	Seed             int64           `json:"seed,omitempty"`
	Risk             string          `json:"risk"`
	StartedAt        time.Time       `json:"started_at"`
	EndedAt          time.Time       `json:"ended_at"`
	Duration         time.Duration   `json:"duration"`
	StartingBankroll decimal.Decimal `json:"starting_bankroll"`
	EndingBankroll   decimal.Decimal `json:"ending_bankroll"`
	Net              decimal.Decimal `json:"net"`
	Wagered          decimal.Decimal `json:"wagered"`
	InsuranceNet     decimal.Decimal `json:"insurance_net"`
	ROI              float64         `json:"roi"` // percent of wagered

	Rounds     int `json:"rounds"`
	Hands      int `json:"hands"`
	Won        int `json:"won"`
	Lost       int `json:"lost"`
	Pushed     int `json:"pushed"`
	Blackjacks int `json:"blackjacks"`
	Busts      int `json:"busts"`
	Surrenders int `json:"surrenders"`
	Doubles    int `json:"doubles"`
	Splits     int `json:"splits"`

	WinRate      float64 `json:"win_rate"` // percent of hands
	HourlyRate   float64 `json:"hourly_rate"`
	HandsPerHour float64 `json:"hands_per_hour"`
	Accuracy     float64 `json:"accuracy"`
	Decisions    int     `json:"decisions"`

	MinBet decimal.Decimal `json:"min_bet"`
	MaxBet decimal.Decimal `json:"max_bet"`
	AvgBet decimal.Decimal `json:"avg_bet"`

	MinTrueCount float64 `json:"min_true_count"`
	MaxTrueCount float64 `json:"max_true_count"`
	AvgTrueCount float64 `json:"avg_true_count"`

	MeanUnits   float64 `json:"mean_units"`
	StdDevUnits float64 `json:"stddev_units"`
	RiskOfRuin  float64 `json:"risk_of_ruin"` // percent, at the average bet

	StopReason string `json:"stop_reason,omitempty"`
}

// Summary snapshots the session as of now
func (t *Tracker) Summary() Summary {
	now := t.clock.Now()
	elapsed := now.Sub(t.startedAt)
	net := t.bankroll.Sub(t.starting)

	s := Summary{
		ID:               t.id,
		Variant:          t.variant,
		Seed:             t.seed,
		Risk:             t.risk.Name,
		StartedAt:        t.startedAt,
		EndedAt:          now,
		Duration:         elapsed,
		StartingBankroll: t.starting,
		EndingBankroll:   t.bankroll,
		Net:              net,
		Wagered:          t.wagered,
		InsuranceNet:     t.insuranceNet,
		Rounds:           t.stats.Rounds,
		Hands:            t.hands,
		Won:              t.won,
		Lost:             t.lost,
		Pushed:           t.pushed,
		Blackjacks:       t.blackjacks,
		Busts:            t.busts,
		Surrenders:       t.surrenders,
		Doubles:          t.doubles,
		Splits:           t.splits,
		Accuracy:         t.Accuracy(),
		Decisions:        t.decisions,
		MinBet:           t.minBet,
		MaxBet:           t.maxBet,
		MinTrueCount:     t.minTC,
		MaxTrueCount:     t.maxTC,
		MeanUnits:        t.stats.Mean(),
		StdDevUnits:      t.stats.StdDev(),
		StopReason:       t.StopReason(),
	}

	if t.wagered.IsPositive() {
		s.ROI = net.Div(t.wagered).InexactFloat64() * 100
	}
	if t.hands > 0 {
		s.WinRate = float64(t.won) / float64(t.hands) * 100
	}
	if n := t.stats.Rounds; n > 0 {
		s.AvgBet = t.sumBets.Div(decimal.NewFromInt(int64(n)))
		s.AvgTrueCount = t.sumTC / float64(n)
		s.RiskOfRuin = betting.RiskOfRuin(t.bankroll, s.AvgBet, s.MeanUnits)
	}
	if hours := elapsed.Hours(); hours > 0 {
		s.HourlyRate = net.InexactFloat64() / hours
		s.HandsPerHour = float64(t.hands) / hours
	}
	return s
}
