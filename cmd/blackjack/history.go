package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/lox/blackjack-trainer/internal/history"
	"github.com/lox/blackjack-trainer/internal/session"
)

// HistoryCmd lists saved sessions, or shows one in full
type HistoryCmd struct {
	ID    string `arg:"" optional:"" help:"Session id to show in full"`
	Limit int    `short:"n" default:"20" help:"Number of sessions to list"`
}

func (c *HistoryCmd) Run(g *Globals) error {
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

	ctx := context.Background()
	if c.ID != "" {
		id, err := uuid.Parse(c.ID)
		if err != nil {
			return fmt.Errorf("invalid session id %q: %w", c.ID, err)
		}
		s, err := store.Get(ctx, id)
		if err != nil {
			return err
		}
		fmt.Println(renderSummary(s))
		return nil
	}

	sessions, err := store.List(ctx, c.Limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions saved in", cfg.History)
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-36s  %-16s  %-8s  %6s  %12s  %8s\n", "ID", "STARTED", "RULES", "ROUNDS", "NET", "ACCURACY")
	for _, s := range sessions {
		fmt.Fprintf(&b, "%-36s  %-16s  %-8s  %6d  %12s  %7.1f%%\n",
			s.ID, s.StartedAt.Local().Format("2006-01-02 15:04"), s.Variant, s.Rounds, money(s.Net), s.Accuracy)
	}
	fmt.Print(headerStyle.Render(fmt.Sprintf("%d sessions", len(sessions))), "\n", b.String())
	return nil
}

func renderSummary(s session.Summary) string {
	return box("Session "+s.ID.String(),
		row("Rules", s.Variant),
		row("Risk", s.Risk),
		row("Started", s.StartedAt.Local().Format("2006-01-02 15:04:05")),
		row("Duration", s.Duration),
		row("Bankroll", fmt.Sprintf("%s -> %s", s.StartingBankroll.StringFixed(2), s.EndingBankroll.StringFixed(2))),
		row("Net", money(s.Net)),
		row("Wagered", s.Wagered.StringFixed(2)),
		row("ROI", fmt.Sprintf("%.2f%%", s.ROI)),
		row("Rounds / hands", fmt.Sprintf("%d / %d", s.Rounds, s.Hands)),
		row("Won / lost / push", fmt.Sprintf("%d / %d / %d", s.Won, s.Lost, s.Pushed)),
		row("Blackjacks", s.Blackjacks),
		row("Win rate", fmt.Sprintf("%.1f%%", s.WinRate)),
		row("Hourly rate", fmt.Sprintf("%.2f", s.HourlyRate)),
		row("Risk of ruin", fmt.Sprintf("%.1f%%", s.RiskOfRuin)),
		row("Accuracy", fmt.Sprintf("%.1f%% of %d", s.Accuracy, s.Decisions)),
		row("Bets", fmt.Sprintf("%s - %s (avg %s)", s.MinBet.StringFixed(2), s.MaxBet.StringFixed(2), s.AvgBet.StringFixed(2))),
		row("True count", fmt.Sprintf("%+.1f to %+.1f (avg %+.2f)", s.MinTrueCount, s.MaxTrueCount, s.AvgTrueCount)),
		row("Stop", s.StopReason),
	)
}
