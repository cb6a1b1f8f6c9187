package game

import (
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lox/blackjack-trainer/internal/count"
	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/strategy"
)

// HandView is what the player can see of one of their hands
type HandView struct {
	Index       int               `json:"index"`
	Cards       []deck.Card       `json:"cards"`
	Total       int               `json:"total"`
	Soft        bool              `json:"soft"`
	Bet         decimal.Decimal   `json:"bet"`
	Doubled     bool              `json:"doubled"`
	Surrendered bool              `json:"surrendered"`
	Done        bool              `json:"done"`
	Legal       []strategy.Action `json:"legal,omitempty"`
}

// TableView is a read-only snapshot of the table from the player's seat
type TableView struct {
	Phase            Phase           `json:"phase"`
	Round            int             `json:"round"`
	RoundID          *uuid.UUID      `json:"round_id,omitempty"`
	Bet              decimal.Decimal `json:"bet"`
	Hands            []HandView      `json:"hands,omitempty"`
	ActiveHand       int             `json:"active_hand"`
	DealerCards      []deck.Card     `json:"dealer_cards,omitempty"`
	InsuranceOffered bool            `json:"insurance_offered"`
	Count            count.State     `json:"count"`
	Last             *RoundResult    `json:"last,omitempty"`
}

// View snapshots the table. The dealer hole card is hidden until revealed.
func (t *Table) View() TableView {
	v := TableView{
		Phase:      t.phase,
		Round:      t.rounds,
		ActiveHand: t.ActiveHand(),
		Count:      t.CountState(),
		Last:       t.last,
	}
	r := t.round
	if r == nil {
		return v
	}

	id := r.id
	v.RoundID = &id
	v.Bet = r.bet
	v.InsuranceOffered = t.phase == PhaseInsurance
	v.DealerCards = slices.Clone(r.dealerView().Cards)
	for i, s := range r.seats {
		hv := HandView{
			Index:       i,
			Cards:       slices.Clone(s.hand.Cards),
			Total:       s.hand.Total(),
			Soft:        s.hand.IsSoft(),
			Bet:         s.bet,
			Doubled:     s.doubled,
			Surrendered: s.surrendered,
			Done:        s.done,
		}
		if t.phase == PhasePlayerActions {
			hv.Legal = t.LegalActions(i)
		}
		v.Hands = append(v.Hands, hv)
	}
	return v
}
