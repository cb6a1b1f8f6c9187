package game

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/lox/blackjack-trainer/internal/hand"
)

// finish plays the dealer hand if anything is left to play against, settles
// every hand and notifies sinks
func (t *Table) finish() error {
	r := t.round
	t.phase = PhaseDealerPlay

	// The hole card is always turned over so the count covers every card dealt
	if !r.revealed {
		t.counter.Observe(r.dealer.Cards[1])
		r.revealed = true
	}
	if !r.dealer.IsBlackjack() && r.anyLive() {
		for t.dealerHits() {
			c, err := t.draw(true)
			if err != nil {
				return err
			}
			r.dealer.Add(c)
		}
	}

	t.phase = PhaseSettlement
	result := t.settle()
	t.logger.Debug("Round settled", "round", result.Number, "dealer", r.dealer, "net", result.Net)

	t.last = &result
	t.round = nil
	t.phase = PhaseIdle
	for _, sink := range t.sinks {
		sink.RecordRound(result)
	}
	return nil
}

// anyLive reports whether some hand still needs the dealer to draw
func (r *round) anyLive() bool {
	for _, s := range r.seats {
		if !s.surrendered && !s.hand.IsBust() && !s.hand.IsBlackjack() {
			return true
		}
	}
	return false
}

func (t *Table) dealerHits() bool {
	d := t.round.dealer
	total := d.Total()
	if total < 17 {
		return true
	}
	return total == 17 && d.IsSoft() && t.rules.DealerHitsSoft17
}

func (t *Table) settle() RoundResult {
	r := t.round
	dealerBJ := r.dealer.IsBlackjack()
	dealerBust := r.dealer.IsBust()
	dealerTotal := r.dealer.Total()
	payout := t.rules.BlackjackPayout.Decimal()

	result := RoundResult{
		ID:              r.id,
		Number:          t.rounds,
		Bet:             r.bet,
		DealerCards:     slices.Clone(r.dealer.Cards),
		DealerTotal:     dealerTotal,
		DealerBlackjack: dealerBJ,
		DealerBust:      dealerBust,
		Insurance:       r.insurance,
		Decisions:       r.decisions,
		Reshuffled:      r.reshuffled,
		StartCount:      r.startCount,
	}

	wagered := decimal.Zero
	net := decimal.Zero
	for i, s := range r.seats {
		hr := settleHand(s, dealerBJ, dealerBust, dealerTotal, payout)
		hr.Index = i
		hr.PayoutRatio = hr.Net.Div(r.bet)
		result.Hands = append(result.Hands, hr)
		wagered = wagered.Add(s.bet)
		net = net.Add(hr.Net)
	}

	if r.insurance.Taken {
		if dealerBJ {
			result.Insurance.Net = r.insurance.Amount.Mul(decimal.NewFromInt(2))
		} else {
			result.Insurance.Net = r.insurance.Amount.Neg()
		}
		wagered = wagered.Add(r.insurance.Amount)
		net = net.Add(result.Insurance.Net)
	}

	result.Wagered = wagered
	result.Net = net
	result.Count = t.CountState()
	return result
}

func settleHand(s *seat, dealerBJ, dealerBust bool, dealerTotal int, payout decimal.Decimal) HandResult {
	h := s.hand
	hr := HandResult{
		Cards:     slices.Clone(h.Cards),
		Total:     h.Total(),
		Soft:      h.IsSoft(),
		Blackjack: h.IsBlackjack(),
		Bust:      h.IsBust(),
		Doubled:   s.doubled,
		FromSplit: h.FromSplit,
		Bet:       s.bet,
	}

	switch {
	case s.surrendered:
		hr.Outcome = Surrendered
		hr.Net = s.bet.Div(decimal.NewFromInt(2)).Neg()
	case h.IsBlackjack() && dealerBJ:
		hr.Outcome = Push
	case h.IsBlackjack():
		hr.Outcome = BlackjackWin
		hr.Net = s.bet.Mul(payout)
	case dealerBJ, h.IsBust():
		hr.Outcome = Loss
		hr.Net = s.bet.Neg()
	case dealerBust, h.Total() > dealerTotal:
		hr.Outcome = Win
		hr.Net = s.bet
	case h.Total() < dealerTotal:
		hr.Outcome = Loss
		hr.Net = s.bet.Neg()
	default:
		hr.Outcome = Push
	}
	return hr
}

// dealerView hides the hole card until it has been turned over
func (r *round) dealerView() hand.Hand {
	if r.revealed {
		return r.dealer
	}
	return hand.New(r.dealer.Cards[0])
}
