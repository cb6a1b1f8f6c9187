package game

import (
	"errors"

	"github.com/lox/blackjack-trainer/internal/deck"
)

var (
	// ErrIllegalAction rejects a call that is not valid in the current phase
	// or for the addressed hand. State is never mutated.
	ErrIllegalAction = errors.New("game: illegal action")

	// ErrInsufficientBankroll rejects a wager the wallet cannot cover
	ErrInsufficientBankroll = errors.New("game: insufficient bankroll")

	// ErrShoeExhausted is fatal for the table
	ErrShoeExhausted = deck.ErrShoeExhausted
)
