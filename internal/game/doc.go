// Package game runs blackjack rounds for a single player seat.
//
// The main type is Table, which owns one shoe and one Hi-Lo counter for the
// life of a session and moves each round through its phases:
//
//	Idle -> (Insurance) -> PlayerActions -> DealerPlay -> Settlement -> Idle
//
// # Basic Usage
//
//	rng := randutil.New(42)
//	t, err := game.NewTable(rng, rules.Default(), game.WithWallet(tracker))
//	if err != nil {
//	    return err
//	}
//	if err := t.StartRound(decimal.NewFromInt(10)); err != nil {
//	    return err
//	}
//	for t.Phase() == game.PhasePlayerActions {
//	    rec, _ := t.Recommendation(t.ActiveHand())
//	    if err := t.SubmitAction(t.ActiveHand(), rec.Action); err != nil {
//	        return err
//	    }
//	}
//	result, _ := t.LastResult()
//
// # Deterministic Testing
//
// Pass a stacked shoe to deal a known sequence. Cards are dealt player,
// dealer up, player, dealer hole, then in the order the round draws them:
//
//	shoe := deck.NewStackedShoe(deck.MustParseCards("AsTd Kh7c"), 1)
//	t, _ := game.NewTable(rng, rules.Default(), game.WithShoe(shoe))
//
// # Errors
//
// ErrIllegalAction and ErrInsufficientBankroll are recoverable: the table is
// left exactly as it was. ErrShoeExhausted is fatal and the table refuses
// every later call.
package game
