package main

import (
	"errors"
	"fmt"

	"github.com/lox/blackjack-trainer/internal/betting"
	"github.com/lox/blackjack-trainer/internal/count"
	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/hand"
	"github.com/lox/blackjack-trainer/internal/strategy"
)

// AdviseCmd answers "what should I do with this hand"
type AdviseCmd struct {
	Player string `arg:"" help:"Player cards, e.g. 'Th6s' or '8h 8d'"`
	Dealer string `arg:"" help:"Dealer up-card, e.g. 'Tc'"`

	TrueCount      *float64 `name:"tc" help:"True count (default derived from --running-count, else 0)"`
	RunningCount   int      `name:"running-count" short:"r" help:"Running count"`
	DecksRemaining float64  `name:"decks-remaining" short:"d" help:"Decks left in the shoe"`
	NoDouble       bool     `help:"Doubling is not available"`
	NoSplit        bool     `help:"Splitting is not available"`
	NoSurrender    bool     `help:"Surrender is not available"`
}

func (c *AdviseCmd) Run(g *Globals) error {
	logger := g.logger()
	cfg, err := g.load(logger)
	if err != nil {
		return err
	}

	cards, err := deck.ParseCards(c.Player)
	if err != nil {
		return fmt.Errorf("player cards: %w", err)
	}
	if len(cards) < 2 {
		return errors.New("player needs at least two cards")
	}
	up, err := deck.ParseCard(c.Dealer)
	if err != nil {
		return fmt.Errorf("dealer card: %w", err)
	}

	tc := c.trueCount()
	engine := strategy.New(cfg.Rules, cfg.StrategyOptions()...)
	h := hand.New(cards...)
	twoCards := h.Len() == 2
	rec := engine.Explain(h, up, twoCards && !c.NoDouble, twoCards && !c.NoSplit, twoCards && !c.NoSurrender, tc)

	rows := []string{
		row("Hand", fmt.Sprintf("%s (%d%s)", h, h.Total(), softLabel(h))),
		row("Dealer", up),
		row("True count", fmt.Sprintf("%+.2f (index %+d)", tc, count.Index(tc))),
		row("Play", actionStyle.Render(rec.Action.String())),
		row("From", rec.Source),
	}
	if rec.Deviation != nil {
		rows = append(rows, row("Deviation", rec.Deviation))
	}
	if up.IsAce() && twoCards {
		take := "no"
		if engine.Insurance(tc) {
			take = "yes"
		}
		rows = append(rows, row("Insurance", take))
	}
	bet := cfg.Spread.Recommend(tc, cfg.Rules.MinBet, cfg.MaxSpread)
	rows = append(rows, row("Next bet", bet))
	if betting.WongOut(tc) {
		rows = append(rows, row("Wong out", "count is poor enough to leave"))
	}

	fmt.Println(box(cfg.Rules.Variant(), rows...))
	return nil
}

func (c *AdviseCmd) trueCount() float64 {
	if c.TrueCount != nil {
		return *c.TrueCount
	}
	if c.DecksRemaining > 0 {
		return float64(c.RunningCount) / max(c.DecksRemaining, count.MinDecksRemaining)
	}
	return 0
}

func softLabel(h hand.Hand) string {
	if h.IsSoft() {
		return " soft"
	}
	return ""
}
