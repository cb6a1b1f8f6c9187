// Package simulator plays many sessions with a bot that follows the strategy
// engine exactly, for measuring expectation and variance under a rule set.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack-trainer/internal/betting"
	"github.com/lox/blackjack-trainer/internal/game"
	"github.com/lox/blackjack-trainer/internal/randutil"
	"github.com/lox/blackjack-trainer/internal/rules"
	"github.com/lox/blackjack-trainer/internal/session"
	"github.com/lox/blackjack-trainer/internal/statistics"
	"github.com/lox/blackjack-trainer/internal/strategy"
)

// Bet sizing methods
const (
	BetSpread = "spread"
	BetKelly  = "kelly"
	BetFlat   = "flat"
)

// Config holds configuration for running simulations
type Config struct {
	Sessions int
	Rounds   int // per session
	Workers  int
	Seed     int64
	Timeout  time.Duration // per session, zero for none

	Rules    rules.Config
	Strategy []strategy.Option

	Method    string
	Spread    betting.Spread
	MaxSpread int
	Kelly     betting.Kelly

	Bankroll     decimal.Decimal
	Risk         session.RiskProfile
	StopOnLimits bool // end a session at its stop-loss or stop-win

	Clock  quartz.Clock
	Logger *log.Logger
}

// SessionResult is one simulated session
type SessionResult struct {
	Index   int
	Seed    int64
	Summary session.Summary
	Stats   *statistics.Statistics
	Correct int
	Broke   bool // ran out of bankroll for the minimum bet
}

// Result aggregates every session
type Result struct {
	Stats     *statistics.Statistics
	Sessions  []SessionResult
	Net       decimal.Decimal
	Wagered   decimal.Decimal
	Correct   int
	Decisions int
	Broke     int
	Elapsed   time.Duration
}

// Accuracy is the share of decisions, insurance included, that matched
// strategy
func (r *Result) Accuracy() float64 {
	if r.Decisions == 0 {
		return 100
	}
	return float64(r.Correct) / float64(r.Decisions) * 100
}

// Simulator runs blackjack sessions
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration, filling in
// defaults for anything left zero
func New(config Config) *Simulator {
	if config.Sessions <= 0 {
		config.Sessions = 1
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Method == "" {
		config.Method = BetSpread
	}
	if len(config.Spread.Steps) == 0 {
		config.Spread = betting.DefaultSpread()
	}
	if config.MaxSpread <= 0 {
		config.MaxSpread = betting.DefaultMaxSpread
	}
	if config.Kelly.Multiplier <= 0 {
		config.Kelly = betting.DefaultKelly()
	}
	if config.Risk.Name == "" {
		config.Risk = session.Medium
	}
	if config.Clock == nil {
		config.Clock = quartz.NewReal()
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config}
}

// Run plays every session and merges the results in session order, so the
// same seed gives the same statistics regardless of worker count
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	cfg := s.config
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	if cfg.Rounds <= 0 {
		return nil, errors.New("simulator: rounds must be positive")
	}
	if !cfg.Bankroll.IsPositive() {
		return nil, errors.New("simulator: bankroll must be positive")
	}

	start := cfg.Clock.Now()
	results := make([]SessionResult, cfg.Sessions)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range cfg.Sessions {
		g.Go(func() error {
			res, err := s.playSession(gctx, i)
			if err != nil {
				return fmt.Errorf("session %d: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Result{
		Stats:    &statistics.Statistics{},
		Sessions: results,
	}
	for _, r := range results {
		out.Stats.Merge(r.Stats)
		out.Net = out.Net.Add(r.Summary.Net)
		out.Wagered = out.Wagered.Add(r.Summary.Wagered)
		out.Correct += r.Correct
		out.Decisions += r.Summary.Decisions
		if r.Broke {
			out.Broke++
		}
	}
	out.Elapsed = cfg.Clock.Since(start)

	// Validate statistics before returning
	if err := out.Stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	cfg.Logger.Info("Simulation complete",
		"sessions", cfg.Sessions,
		"rounds", out.Stats.Rounds,
		"net", out.Net,
		"accuracy", fmt.Sprintf("%.2f%%", out.Accuracy()),
		"elapsed", out.Elapsed)
	return out, nil
}

// playSession runs one session on its own table, shoe and counter
func (s *Simulator) playSession(ctx context.Context, index int) (SessionResult, error) {
	cfg := s.config
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	seed := randutil.Derive(cfg.Seed, index)
	logger := cfg.Logger.With("session", index+1)

	tracker := session.NewTracker(cfg.Bankroll,
		session.WithClock(cfg.Clock),
		session.WithLogger(logger),
		session.WithRiskProfile(cfg.Risk),
		session.WithSeed(seed),
		session.WithVariant(cfg.Rules.Variant()),
	)
	table, err := game.NewTable(randutil.New(seed), cfg.Rules,
		game.WithStrategy(strategy.New(cfg.Rules, cfg.Strategy...)),
		game.WithWallet(tracker),
		game.WithResultSink(tracker),
		game.WithLogger(logger),
	)
	if err != nil {
		return SessionResult{}, err
	}

	res := SessionResult{Index: index, Seed: seed}
	for range cfg.Rounds {
		if err := ctx.Err(); err != nil {
			return SessionResult{}, fmt.Errorf("session timed out (seed: %d): %w", seed, err)
		}
		bet, ok := s.betSize(table, tracker)
		if !ok {
			res.Broke = true
			logger.Debug("Bankroll exhausted", "bankroll", tracker.Balance())
			break
		}
		if err := playRound(table, bet); err != nil {
			return SessionResult{}, err
		}
		if cfg.StopOnLimits && tracker.StopReason() != "" {
			logger.Debug("Session limit reached", "reason", tracker.StopReason())
			break
		}
	}

	res.Summary = tracker.Summary()
	res.Stats = tracker.Statistics()
	res.Correct, _ = tracker.Decisions()
	return res, nil
}

// betSize prices the next bet from the count as it stands before the deal.
// It reports false once the bankroll cannot cover the table minimum.
func (s *Simulator) betSize(table *game.Table, tracker *session.Tracker) (decimal.Decimal, bool) {
	cfg := s.config
	r := table.Rules()
	balance := tracker.Balance()
	if balance.LessThan(r.MinBet) {
		return decimal.Zero, false
	}

	tc := table.CountState().TrueCount
	var bet decimal.Decimal
	switch cfg.Method {
	case BetKelly:
		bet = cfg.Kelly.Bet(balance, tc, r.MinBet, r.MaxBet)
	case BetFlat:
		bet = r.MinBet
	default:
		bet = cfg.Spread.Recommend(tc, r.MinBet, cfg.MaxSpread).Amount
	}
	bet = decimal.Min(bet, r.MaxBet, balance)
	return decimal.Max(bet, r.MinBet), true
}

// playRound plays one round the way the engine recommends
func playRound(table *game.Table, bet decimal.Decimal) error {
	if err := table.StartRound(bet); err != nil {
		return err
	}
	if table.Phase() == game.PhaseInsurance {
		take, err := table.InsuranceRecommendation()
		if err != nil {
			return err
		}
		err = table.SubmitInsurance(take)
		if errors.Is(err, game.ErrInsufficientBankroll) {
			err = table.SubmitInsurance(false)
		}
		if err != nil {
			return err
		}
	}
	for table.Phase() == game.PhasePlayerActions {
		i := table.ActiveHand()
		rec, err := table.Recommendation(i)
		if err != nil {
			return err
		}
		if err := table.SubmitAction(i, rec.Action); err != nil {
			return err
		}
	}
	return nil
}

// RunSimulation is a convenience function for a flat-config run
func RunSimulation(ctx context.Context, sessions, rounds int, seed int64, cfg rules.Config, logger *log.Logger) (*Result, error) {
	return New(Config{
		Sessions: sessions,
		Rounds:   rounds,
		Workers:  sessions,
		Seed:     seed,
		Rules:    cfg,
		Bankroll: cfg.MinBet.Mul(decimal.NewFromInt(1000)),
		Logger:   logger,
	}).Run(ctx)
}

// PrintSummary writes a report of simulation results
func PrintSummary(w io.Writer, res *Result, cfg rules.Config) {
	stats := res.Stats
	mean := stats.Mean()
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== FINAL RESULTS: %s ===\n", cfg)
	fmt.Fprintf(w, "Sessions: %d (%d broke)\n", len(res.Sessions), res.Broke)
	fmt.Fprintf(w, "Rounds played: %d\n", stats.Rounds)
	fmt.Fprintf(w, "Net: %s on %s wagered\n", res.Net.StringFixed(2), res.Wagered.StringFixed(2))
	fmt.Fprintf(w, "Strategy accuracy: %.2f%% of %d decisions\n", res.Accuracy(), res.Decisions)

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Mean: %.4f units/round\n", mean)
	fmt.Fprintf(w, "Median: %.4f units/round\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f units\n", stats.StdDev())
	fmt.Fprintf(w, "Std Error: %.4f units\n", stats.StdError())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] units/round\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.3f, P25=%.3f, P75=%.3f, P95=%.3f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

	fmt.Fprintf(w, "\n=== OUTCOME ANALYSIS ===\n")
	if stats.Rounds > 0 {
		n := float64(stats.Rounds)
		fmt.Fprintf(w, "Wins: %d (%.1f%%), Losses: %d (%.1f%%), Pushes: %d (%.1f%%)\n",
			stats.Wins, float64(stats.Wins)/n*100,
			stats.Losses, float64(stats.Losses)/n*100,
			stats.Pushes, float64(stats.Pushes)/n*100)
		fmt.Fprintf(w, "Blackjacks: %d, Doubles: %d, Splits: %d, Surrenders: %d\n",
			stats.Blackjacks, stats.Doubles, stats.Splits, stats.Surrenders)
		fmt.Fprintf(w, "Biggest win: %.1f units, biggest loss: %.1f units\n", stats.MaxWinUnits, stats.MaxLossUnits)
	}

	fmt.Fprintf(w, "\n=== TRUE COUNT ANALYSIS ===\n")
	for index := statistics.MinCountBucket; index <= statistics.MaxCountBucket; index++ {
		if rounds := stats.CountRounds(index); rounds > 0 {
			fmt.Fprintf(w, "TC %+3d: %6d rounds, %+.3f units/round\n", index, rounds, stats.CountMean(index))
		}
	}
}
