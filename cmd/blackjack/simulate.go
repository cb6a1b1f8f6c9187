package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lox/blackjack-trainer/internal/history"
	"github.com/lox/blackjack-trainer/internal/randutil"
	"github.com/lox/blackjack-trainer/internal/simulator"
)

// SimulateCmd runs bot sessions and reports expectation and variance
type SimulateCmd struct {
	Sessions     int     `default:"10" help:"Number of sessions"`
	Rounds       int     `default:"1000" help:"Rounds per session"`
	Workers      int     `default:"0" help:"Parallel sessions (0 for one per CPU)"`
	Seed         *int64  `env:"BLACKJACK_SEED" help:"Deterministic RNG seed (optional)"`
	Method       string  `help:"Bet sizing, overriding the config file (spread, kelly, flat)"`
	Bankroll     float64 `help:"Starting bankroll per session, overriding the config file"`
	StopOnLimits bool    `help:"End sessions at the risk profile's stop-loss or stop-win"`
	Save         bool    `help:"Save every session summary to history"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	logger := g.logger()
	cfg, err := g.load(logger)
	if err != nil {
		return err
	}

	seed := randutil.Seed(c.Seed)
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	method := cfg.Method
	switch c.Method {
	case "":
	case simulator.BetSpread, simulator.BetKelly, simulator.BetFlat:
		method = c.Method
	default:
		return fmt.Errorf("unknown bet sizing method %q", c.Method)
	}
	bankroll := cfg.Bankroll
	if c.Bankroll > 0 {
		bankroll = decimal.NewFromFloat(c.Bankroll)
	}

	logger.Info("Starting simulation",
		"sessions", c.Sessions,
		"rounds", c.Rounds,
		"workers", workers,
		"seed", seed,
		"method", method,
		"rules", cfg.Rules.Variant())

	ctx, cancel := signalContext()
	defer cancel()

	sim := simulator.New(simulator.Config{
		Sessions:     c.Sessions,
		Rounds:       c.Rounds,
		Workers:      workers,
		Seed:         seed,
		Rules:        cfg.Rules,
		Strategy:     cfg.StrategyOptions(),
		Method:       method,
		Spread:       cfg.Spread,
		MaxSpread:    cfg.MaxSpread,
		Kelly:        cfg.Kelly,
		Bankroll:     bankroll,
		Risk:         cfg.Risk,
		StopOnLimits: c.StopOnLimits,
		Logger:       logger,
	})
	res, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(box("Simulation",
		row("Seed", seed),
		row("Rules", cfg.Rules),
		row("Bet sizing", method),
		row("Rounds", res.Stats.Rounds),
		row("Net", money(res.Net)),
		row("Wagered", res.Wagered.StringFixed(2)),
		row("Accuracy", fmt.Sprintf("%.2f%%", res.Accuracy())),
		row("Elapsed", res.Elapsed.Round(time.Millisecond)),
	))
	simulator.PrintSummary(os.Stdout, res, cfg.Rules)

	if !c.Save {
		return nil
	}
	store, err := history.Open(cfg.History)
	if err != nil {
		return err
	}
	defer store.Close()
	for _, s := range res.Sessions {
		if err := store.Save(ctx, s.Summary); err != nil {
			return err
		}
	}
	logger.Info("Sessions saved", "count", len(res.Sessions), "path", cfg.History)
	return nil
}
