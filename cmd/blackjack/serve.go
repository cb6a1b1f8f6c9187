package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/lox/blackjack-trainer/internal/api"
	"github.com/lox/blackjack-trainer/internal/game"
	"github.com/lox/blackjack-trainer/internal/history"
	"github.com/lox/blackjack-trainer/internal/randutil"
	"github.com/lox/blackjack-trainer/internal/session"
	"github.com/lox/blackjack-trainer/internal/strategy"
)

// ServeCmd serves one table over HTTP on the loopback interface
type ServeCmd struct {
	Addr   string `default:"127.0.0.1:8080" env:"BLACKJACK_ADDR" help:"Listen address"`
	Seed   *int64 `env:"BLACKJACK_SEED" help:"Deterministic RNG seed for the shoe (optional)"`
	NoSave bool   `help:"Do not save the session summary on shutdown"`
}

func (c *ServeCmd) Run(g *Globals) error {
	logger := g.logger()
	cfg, err := g.load(logger)
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.History)
	if err != nil {
		return err
	}
	defer store.Close()

	seed := randutil.Seed(c.Seed)
	tracker := session.NewTracker(cfg.Bankroll,
		session.WithLogger(logger),
		session.WithRiskProfile(cfg.Risk),
		session.WithSeed(seed),
		session.WithVariant(cfg.Rules.Variant()),
	)
	table, err := game.NewTable(randutil.New(seed), cfg.Rules,
		game.WithStrategy(strategy.New(cfg.Rules, cfg.StrategyOptions()...)),
		game.WithWallet(tracker),
		game.WithResultSink(tracker),
		game.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	srv := api.NewServer(table, tracker,
		api.WithSpread(cfg.Spread, cfg.MaxSpread),
		api.WithHistory(store),
		api.WithLogger(logger),
	)
	httpServer := &http.Server{
		Addr:              c.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signalContext()
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting blackjack server", "address", c.Addr, "seed", seed, "rules", cfg.Rules)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	if c.NoSave || tracker.Rounds() == 0 {
		return nil
	}
	summary := tracker.Summary()
	if err := store.Save(context.Background(), summary); err != nil {
		return err
	}
	logger.Info("Session saved", "id", summary.ID, "rounds", summary.Rounds, "net", summary.Net)
	return nil
}
