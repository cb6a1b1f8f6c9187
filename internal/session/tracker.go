// Package session tracks a player's bankroll and results across rounds.
package session

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lox/blackjack-trainer/internal/game"
	"github.com/lox/blackjack-trainer/internal/statistics"
)

// Tracker is the bankroll behind a table and the sink for its results.
// Like the table it serves, it is not safe for concurrent use.
type Tracker struct {
	id      uuid.UUID
	clock   quartz.Clock
	logger  *log.Logger
	risk    RiskProfile
	seed    int64
	variant string

	startedAt time.Time
	starting  decimal.Decimal
	bankroll  decimal.Decimal

	stats statistics.Statistics

	hands      int
	won        int
	lost       int
	pushed     int
	blackjacks int
	busts      int
	surrenders int
	doubles    int
	splits     int

	wagered      decimal.Decimal
	insuranceNet decimal.Decimal
	correct      int
	decisions    int

	minBet, maxBet, sumBets decimal.Decimal
	minTC, maxTC, sumTC     float64
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock sets the clock used for session timing. Default is the real clock.
func WithClock(c quartz.Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithLogger sets the logger. Default discards output.
func WithLogger(l *log.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithRiskProfile sets stop-loss and stop-win limits. Default is Medium.
func WithRiskProfile(p RiskProfile) Option {
	return func(t *Tracker) { t.risk = p }
}

// WithID sets the session id instead of generating one
func WithID(id uuid.UUID) Option {
	return func(t *Tracker) { t.id = id }
}

// WithSeed records the shoe seed for replay
func WithSeed(seed int64) Option {
	return func(t *Tracker) { t.seed = seed }
}

// WithVariant records the rule variant label, e.g. "S17 DAS"
func WithVariant(v string) Option {
	return func(t *Tracker) { t.variant = v }
}

// NewTracker starts a session with the given bankroll
func NewTracker(bankroll decimal.Decimal, opts ...Option) *Tracker {
	t := &Tracker{
		id:       uuid.New(),
		clock:    quartz.NewReal(),
		risk:     Medium,
		starting: bankroll,
		bankroll: bankroll,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = log.New(io.Discard)
	}
	t.logger = t.logger.WithPrefix("session").With("id", t.id)
	t.startedAt = t.clock.Now()
	return t
}

// ID returns the session id
func (t *Tracker) ID() uuid.UUID { return t.id }

// Balance implements game.Wallet
func (t *Tracker) Balance() decimal.Decimal { return t.bankroll }

// Risk returns the session risk profile
func (t *Tracker) Risk() RiskProfile { return t.risk }

// Rounds returns how many rounds have been recorded
func (t *Tracker) Rounds() int { return t.stats.Rounds }

// Statistics returns a copy of the per-round statistics
func (t *Tracker) Statistics() *statistics.Statistics {
	s := t.stats
	s.Values = append([]float64(nil), t.stats.Values...)
	return &s
}

// RecordRound implements game.ResultSink
func (t *Tracker) RecordRound(r game.RoundResult) {
	t.bankroll = t.bankroll.Add(r.Net)
	t.wagered = t.wagered.Add(r.Wagered)
	t.insuranceNet = t.insuranceNet.Add(r.Insurance.Net)

	first := t.stats.Rounds == 0
	tc := r.StartCount.TrueCount
	if first || r.Bet.LessThan(t.minBet) {
		t.minBet = r.Bet
	}
	if first || r.Bet.GreaterThan(t.maxBet) {
		t.maxBet = r.Bet
	}
	t.sumBets = t.sumBets.Add(r.Bet)
	if first {
		t.minTC, t.maxTC = tc, tc
	}
	t.minTC = math.Min(t.minTC, tc)
	t.maxTC = math.Max(t.maxTC, tc)
	t.sumTC += tc

	sr := statistics.RoundResult{
		NetUnits:   r.Units(),
		Seed:       t.seed,
		CountIndex: r.StartCount.Index(),
		Hands:      len(r.Hands),
		Split:      len(r.Hands) > 1,
	}
	for _, h := range r.Hands {
		t.hands++
		switch h.Outcome {
		case game.Win:
			t.won++
		case game.BlackjackWin:
			t.won++
			t.blackjacks++
			sr.Blackjack = true
		case game.Loss:
			t.lost++
		case game.Push:
			t.pushed++
		case game.Surrendered:
			t.lost++
			t.surrenders++
			sr.Surrender = true
		}
		if h.Bust {
			t.busts++
		}
		if h.Doubled {
			t.doubles++
			sr.Doubled = true
		}
	}
	if sr.Split {
		t.splits++
	}
	t.stats.Add(sr)

	correct, total := r.Accuracy()
	t.correct += correct
	t.decisions += total

	t.logger.Debug("Round recorded", "round", r.Number, "net", r.Net, "bankroll", t.bankroll)
}

// StopReason returns "stop-loss" or "stop-win" once the risk profile says
// the session should end, otherwise "".
func (t *Tracker) StopReason() string {
	switch {
	case t.risk.ShouldStopLoss(t.starting, t.bankroll):
		return "stop-loss"
	case t.risk.ShouldStopWin(t.starting, t.bankroll):
		return "stop-win"
	}
	return ""
}

// Accuracy returns the percentage of decisions that matched strategy.
// A session without decisions is 100% accurate.
func (t *Tracker) Accuracy() float64 {
	if t.decisions == 0 {
		return 100
	}
	return float64(t.correct) / float64(t.decisions) * 100
}

// Decisions returns how many graded decisions matched strategy and how many
// there were
func (t *Tracker) Decisions() (correct, total int) {
	return t.correct, t.decisions
}
