package game

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/randutil"
	"github.com/lox/blackjack-trainer/internal/rules"
)

// stackedTable deals cards in order: player, dealer up, player, dealer hole,
// then whatever the round draws next.
func stackedTable(t *testing.T, cfg rules.Config, cards string, opts ...Option) *Table {
	t.Helper()
	shoe := deck.NewStackedShoe(deck.MustParseCards(cards), 1)
	tbl, err := NewTable(randutil.New(1), cfg, append([]Option{WithShoe(shoe)}, opts...)...)
	require.NoError(t, err)
	return tbl
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, money(want).Equal(got), "want %s, got %s", want, got)
}

type recordingSink struct {
	rounds []RoundResult
}

func (s *recordingSink) RecordRound(r RoundResult) {
	s.rounds = append(s.rounds, r)
}

type fixedWallet struct {
	balance decimal.Decimal
}

func (w fixedWallet) Balance() decimal.Decimal {
	return w.balance
}

func lastResult(t *testing.T, tbl *Table) RoundResult {
	t.Helper()
	r, ok := tbl.LastResult()
	require.True(t, ok, "no settled round")
	return r
}
