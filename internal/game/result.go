package game

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lox/blackjack-trainer/internal/count"
	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/strategy"
)

// Outcome is how a single player hand finished
type Outcome int

const (
	Win Outcome = iota
	Loss
	Push
	BlackjackWin
	Surrendered
)

func (o Outcome) String() string {
	if o < Win || o > Surrendered {
		return fmt.Sprintf("outcome(%d)", int(o))
	}
	return [...]string{"win", "loss", "push", "blackjack", "surrender"}[o]
}

// MarshalText encodes the outcome name
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Decision records one player choice alongside what strategy recommended at
// the moment it was made.
type Decision struct {
	Hand        int             `json:"hand"`
	PlayerCards []deck.Card     `json:"player_cards"`
	DealerUp    deck.Card       `json:"dealer_up"`
	TrueCount   float64         `json:"true_count"`
	Taken       strategy.Action `json:"taken"`
	Recommended strategy.Action `json:"recommended"`
	Source      strategy.Source `json:"source"`
	Correct     bool            `json:"correct"`
}

// InsuranceResult is the outcome of the insurance side bet
type InsuranceResult struct {
	Offered     bool            `json:"offered"`
	Taken       bool            `json:"taken"`
	Recommended bool            `json:"recommended"`
	Correct     bool            `json:"correct"`
	TrueCount   float64         `json:"true_count"`
	Amount      decimal.Decimal `json:"amount"`
	Net         decimal.Decimal `json:"net"`
}

// HandResult is the settlement of one player hand
type HandResult struct {
	Index       int             `json:"index"`
	Cards       []deck.Card     `json:"cards"`
	Total       int             `json:"total"`
	Soft        bool            `json:"soft"`
	Blackjack   bool            `json:"blackjack"`
	Bust        bool            `json:"bust"`
	Doubled     bool            `json:"doubled"`
	FromSplit   bool            `json:"from_split"`
	Outcome     Outcome         `json:"outcome"`
	Bet         decimal.Decimal `json:"bet"`
	Net         decimal.Decimal `json:"net"`
	PayoutRatio decimal.Decimal `json:"payout_ratio"` // net per unit of the initial bet
}

// RoundResult is emitted once per settled round
type RoundResult struct {
	ID              uuid.UUID       `json:"id"`
	Number          int             `json:"number"`
	Bet             decimal.Decimal `json:"bet"`
	Hands           []HandResult    `json:"hands"`
	DealerCards     []deck.Card     `json:"dealer_cards"`
	DealerTotal     int             `json:"dealer_total"`
	DealerBlackjack bool            `json:"dealer_blackjack"`
	DealerBust      bool            `json:"dealer_bust"`
	Insurance       InsuranceResult `json:"insurance"`
	Decisions       []Decision      `json:"decisions"`
	Wagered         decimal.Decimal `json:"wagered"`
	Net             decimal.Decimal `json:"net"`
	Reshuffled      bool            `json:"reshuffled"`
	StartCount      count.State     `json:"start_count"`
	Count           count.State     `json:"count"`
}

// Accuracy returns how many recorded decisions, insurance included, matched
// the recommendation.
func (r RoundResult) Accuracy() (correct, total int) {
	for _, d := range r.Decisions {
		total++
		if d.Correct {
			correct++
		}
	}
	if r.Insurance.Offered {
		total++
		if r.Insurance.Correct {
			correct++
		}
	}
	return correct, total
}

// Units returns the round net in units of the initial bet
func (r RoundResult) Units() float64 {
	if r.Bet.IsZero() {
		return 0
	}
	return r.Net.Div(r.Bet).InexactFloat64()
}

// Wallet is the bankroll a table checks wagers against
type Wallet interface {
	Balance() decimal.Decimal
}

// ResultSink receives every settled round
type ResultSink interface {
	RecordRound(RoundResult)
}
