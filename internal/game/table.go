package game

import (
	"fmt"
	"io"
	rand "math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lox/blackjack-trainer/internal/count"
	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/hand"
	"github.com/lox/blackjack-trainer/internal/rules"
	"github.com/lox/blackjack-trainer/internal/strategy"
)

// Table plays rounds for one seat. It owns its shoe and counter and is not
// safe for concurrent use.
type Table struct {
	rules   rules.Config
	shoe    *deck.Shoe
	counter *count.Counter
	engine  *strategy.Engine
	wallet  Wallet
	sinks   []ResultSink
	logger  *log.Logger

	phase  Phase
	round  *round
	rounds int
	last   *RoundResult
	fatal  error
}

// seat is one player hand within a round. Splitting adds seats.
type seat struct {
	hand        hand.Hand
	bet         decimal.Decimal
	actions     int
	doubled     bool
	surrendered bool
	locked      bool // split Aces take one card only
	done        bool
}

type round struct {
	id         uuid.UUID
	bet        decimal.Decimal
	seats      []*seat
	active     int
	dealer     hand.Hand // up card first, hole card second
	revealed   bool
	splits     int
	insurance  InsuranceResult
	decisions  []Decision
	reshuffled bool
	startCount count.State
}

// NewTable creates a table for the given rules. The RNG shuffles the shoe
// unless WithShoe supplies one.
func NewTable(rng *rand.Rand, cfg rules.Config, opts ...Option) (*Table, error) {
	if rng == nil {
		panic("rng is required for table creation")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := defaultConfig()
	for _, opt := range opts {
		opt(c)
	}

	shoe := c.shoe
	if shoe == nil {
		var err error
		shoe, err = deck.NewShoe(rng, cfg.Decks, cfg.Penetration)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", rules.ErrInvalidRuleConfig, err)
		}
	}
	engine := c.engine
	if engine == nil {
		engine = strategy.New(cfg)
	}
	logger := c.logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Table{
		rules:   cfg,
		shoe:    shoe,
		counter: count.NewCounter(c.granularity),
		engine:  engine,
		wallet:  c.wallet,
		sinks:   c.sinks,
		logger:  logger.WithPrefix("table"),
	}, nil
}

// Rules returns the rule set the table deals under
func (t *Table) Rules() rules.Config { return t.rules }

// Phase returns the current phase
func (t *Table) Phase() Phase { return t.phase }

// Engine returns the strategy engine used for recommendations
func (t *Table) Engine() *strategy.Engine { return t.engine }

// Rounds returns how many rounds have been started
func (t *Table) Rounds() int { return t.rounds }

// Err returns the fatal error that stopped the table, if any
func (t *Table) Err() error { return t.fatal }

// CountState snapshots the count against the current shoe depth
func (t *Table) CountState() count.State {
	return t.counter.Snapshot(t.shoe.CardsRemaining())
}

// CardsDealt returns how far into the shoe play has gone
func (t *Table) CardsDealt() int { return t.shoe.CardsDealt() }

// LastResult returns the most recently settled round
func (t *Table) LastResult() (RoundResult, bool) {
	if t.last == nil {
		return RoundResult{}, false
	}
	return *t.last, true
}

// ActiveHand returns the index of the hand awaiting action, or -1
func (t *Table) ActiveHand() int {
	if t.phase != PhasePlayerActions {
		return -1
	}
	return t.round.active
}

func (t *Table) trueCount() float64 {
	return t.counter.TrueCount(t.shoe.CardsRemaining())
}

// StartRound places the bet and deals player, dealer up, player, dealer hole.
// A reshuffle due from the previous round happens first.
func (t *Table) StartRound(bet decimal.Decimal) error {
	if t.fatal != nil {
		return t.fatal
	}
	if t.phase != PhaseIdle {
		return fmt.Errorf("%w: round already in progress", ErrIllegalAction)
	}
	if !bet.IsPositive() {
		return fmt.Errorf("%w: bet must be positive", ErrIllegalAction)
	}
	if bet.LessThan(t.rules.MinBet) || bet.GreaterThan(t.rules.MaxBet) {
		return fmt.Errorf("%w: bet %s outside table limits %s-%s", ErrIllegalAction, bet, t.rules.MinBet, t.rules.MaxBet)
	}
	if t.wallet != nil && bet.GreaterThan(t.wallet.Balance()) {
		return fmt.Errorf("%w: bet %s exceeds balance %s", ErrInsufficientBankroll, bet, t.wallet.Balance())
	}

	r := &round{id: uuid.New(), bet: bet}
	if t.shoe.NeedsReshuffle() {
		t.shoe.Reshuffle()
		t.counter.Reset()
		r.reshuffled = true
		t.logger.Info("Shoe reshuffled", "cards", t.shoe.TotalCards(), "cut", t.shoe.CutCardPosition())
	}
	r.startCount = t.CountState()
	t.rounds++
	t.round = r

	var dealt [4]deck.Card
	for i := range dealt {
		c, err := t.draw(i != 3)
		if err != nil {
			return err
		}
		dealt[i] = c
	}
	r.seats = []*seat{{hand: hand.New(dealt[0], dealt[2]), bet: bet}}
	r.dealer = hand.New(dealt[1], dealt[3])

	t.logger.Debug("Round dealt", "round", t.rounds, "bet", bet, "player", r.seats[0].hand, "up", dealt[1])

	if dealt[1].IsAce() {
		r.insurance.Offered = true
		t.phase = PhaseInsurance
		return nil
	}
	return t.afterInsurance()
}

// SubmitInsurance resolves the insurance offer. Insurance costs half the bet
// and pays 2:1 if the dealer has blackjack.
func (t *Table) SubmitInsurance(take bool) error {
	if t.fatal != nil {
		return t.fatal
	}
	if t.phase != PhaseInsurance {
		return fmt.Errorf("%w: insurance is not on offer", ErrIllegalAction)
	}
	r := t.round
	amount := r.bet.Div(decimal.NewFromInt(2))
	if take && !t.canAfford(amount) {
		return fmt.Errorf("%w: insurance %s exceeds balance", ErrInsufficientBankroll, amount)
	}

	tc := t.trueCount()
	recommended := t.engine.Insurance(tc)
	r.insurance.Taken = take
	r.insurance.Recommended = recommended
	r.insurance.Correct = take == recommended
	r.insurance.TrueCount = tc
	if take {
		r.insurance.Amount = amount
	}
	t.logger.Debug("Insurance decided", "taken", take, "recommended", recommended, "tc", tc)
	return t.afterInsurance()
}

// afterInsurance applies the peek and the natural checks
func (t *Table) afterInsurance() error {
	r := t.round
	up := r.dealer.Cards[0]
	if (up.IsAce() || up.IsTenValue()) && r.dealer.IsBlackjack() {
		t.logger.Debug("Dealer blackjack on peek", "round", t.rounds)
		return t.finish()
	}
	if r.seats[0].hand.IsBlackjack() {
		r.seats[0].done = true
		return t.finish()
	}
	t.phase = PhasePlayerActions
	r.active = 0
	return nil
}

// LegalActions lists the actions the hand may take right now, leaving out
// wagers the wallet cannot cover.
func (t *Table) LegalActions(handIndex int) []strategy.Action {
	s, err := t.actionableSeat(handIndex)
	if err != nil {
		return nil
	}
	l := t.legal(s)
	var out []strategy.Action
	for _, a := range []strategy.Action{strategy.Hit, strategy.Stand, strategy.Double, strategy.Split, strategy.Surrender} {
		if l.allows(a) && (!a.Wagers() || t.canAfford(s.bet)) {
			out = append(out, a)
		}
	}
	return out
}

// Recommendation returns what strategy plays for the hand at the current
// true count. It never changes state.
func (t *Table) Recommendation(handIndex int) (strategy.Recommendation, error) {
	if t.fatal != nil {
		return strategy.Recommendation{}, t.fatal
	}
	s, err := t.actionableSeat(handIndex)
	if err != nil {
		return strategy.Recommendation{}, err
	}
	return t.explain(s), nil
}

// InsuranceRecommendation reports whether insurance should be taken
func (t *Table) InsuranceRecommendation() (bool, error) {
	if t.phase != PhaseInsurance {
		return false, fmt.Errorf("%w: insurance is not on offer", ErrIllegalAction)
	}
	return t.engine.Insurance(t.trueCount()), nil
}

// SubmitAction applies one action to the active hand. An action that is not
// legal for the hand is rejected and nothing changes.
func (t *Table) SubmitAction(handIndex int, action strategy.Action) error {
	if t.fatal != nil {
		return t.fatal
	}
	if t.phase != PhasePlayerActions {
		return fmt.Errorf("%w: no hand is awaiting action (phase %s)", ErrIllegalAction, t.phase)
	}
	r := t.round
	if handIndex < 0 || handIndex >= len(r.seats) {
		return fmt.Errorf("%w: hand %d does not exist", ErrIllegalAction, handIndex)
	}
	if handIndex != r.active {
		return fmt.Errorf("%w: hand %d is not the active hand", ErrIllegalAction, handIndex)
	}
	s := r.seats[handIndex]
	if !t.legal(s).allows(action) {
		return fmt.Errorf("%w: %s not allowed on hand %d (%s)", ErrIllegalAction, action, handIndex, s.hand)
	}
	if action.Wagers() && !t.canAfford(s.bet) {
		return fmt.Errorf("%w: %s needs another %s", ErrInsufficientBankroll, action, s.bet)
	}

	rec := t.explain(s)
	r.decisions = append(r.decisions, Decision{
		Hand:        handIndex,
		PlayerCards: slices.Clone(s.hand.Cards),
		DealerUp:    r.dealer.Cards[0],
		TrueCount:   t.trueCount(),
		Taken:       action,
		Recommended: rec.Action,
		Source:      rec.Source,
		Correct:     strategy.IsCorrect(action, rec.Action),
	})
	t.logger.Debug("Player action", "hand", handIndex, "cards", s.hand, "action", action, "recommended", rec.Action)

	switch action {
	case strategy.Hit:
		c, err := t.draw(true)
		if err != nil {
			return err
		}
		s.hand.Add(c)
		s.actions++
		if s.hand.IsBust() || s.hand.Total() == hand.Blackjack {
			s.done = true
		}
	case strategy.Stand:
		s.actions++
		s.done = true
	case strategy.Double:
		c, err := t.draw(true)
		if err != nil {
			return err
		}
		s.hand.Add(c)
		s.bet = s.bet.Add(s.bet)
		s.doubled = true
		s.actions++
		s.done = true
	case strategy.Split:
		if err := t.split(handIndex); err != nil {
			return err
		}
	case strategy.Surrender:
		s.surrendered = true
		s.actions++
		s.done = true
	}
	return t.advance()
}

// split replaces the hand with two hands of one card each and deals each a
// second card straight away
func (t *Table) split(i int) error {
	r := t.round
	s := r.seats[i]
	r.splits++
	aces := s.hand.IsPairOfAces()

	split := make([]*seat, 0, 2)
	for _, c := range s.hand.Cards {
		ns := &seat{hand: hand.Hand{Cards: []deck.Card{c}, FromSplit: true}, bet: s.bet}
		next, err := t.draw(true)
		if err != nil {
			return err
		}
		ns.hand.Add(next)
		switch {
		case aces:
			ns.locked = true
			ns.done = true
		case ns.hand.Total() == hand.Blackjack:
			ns.done = true
		}
		split = append(split, ns)
	}
	r.seats = slices.Replace(r.seats, i, i+1, split...)
	return nil
}

// advance moves to the next unfinished hand, playing out the dealer once
// every hand is done
func (t *Table) advance() error {
	r := t.round
	for r.active < len(r.seats) && r.seats[r.active].done {
		r.active++
	}
	if r.active < len(r.seats) {
		return nil
	}
	return t.finish()
}

func (t *Table) draw(visible bool) (deck.Card, error) {
	c, err := t.shoe.Deal()
	if err != nil {
		return deck.Card{}, t.fail(err)
	}
	if visible {
		t.counter.Observe(c)
	}
	return c, nil
}

func (t *Table) fail(err error) error {
	t.fatal = fmt.Errorf("%w: %d cards dealt in round %d", err, t.shoe.CardsDealt(), t.rounds)
	t.logger.Error("Table stopped", "error", t.fatal)
	return t.fatal
}

// committed is everything already wagered this round
func (t *Table) committed() decimal.Decimal {
	total := t.round.insurance.Amount
	for _, s := range t.round.seats {
		total = total.Add(s.bet)
	}
	return total
}

func (t *Table) canAfford(extra decimal.Decimal) bool {
	if t.wallet == nil {
		return true
	}
	return t.committed().Add(extra).LessThanOrEqual(t.wallet.Balance())
}

func (t *Table) actionableSeat(handIndex int) (*seat, error) {
	if t.phase != PhasePlayerActions {
		return nil, fmt.Errorf("%w: no hand is awaiting action (phase %s)", ErrIllegalAction, t.phase)
	}
	if handIndex < 0 || handIndex >= len(t.round.seats) {
		return nil, fmt.Errorf("%w: hand %d does not exist", ErrIllegalAction, handIndex)
	}
	s := t.round.seats[handIndex]
	if s.done {
		return nil, fmt.Errorf("%w: hand %d is finished", ErrIllegalAction, handIndex)
	}
	return s, nil
}

func (t *Table) explain(s *seat) strategy.Recommendation {
	l := t.legal(s)
	affordable := t.canAfford(s.bet)
	return t.engine.Explain(s.hand, t.round.dealer.Cards[0],
		l.double && affordable, l.split && affordable, l.surrender, t.trueCount())
}

type legality struct {
	hit, stand, double, split, surrender bool
}

// legal applies the rules to a seat. Bankroll is checked separately.
func (t *Table) legal(s *seat) legality {
	if s.done {
		return legality{}
	}
	first := s.actions == 0 && s.hand.Len() == 2
	return legality{
		hit:       !s.locked,
		stand:     true,
		double:    first && !s.locked && (!s.hand.FromSplit || t.rules.DoubleAfterSplit),
		split:     first && s.hand.IsPair() && t.round.splits < t.rules.MaxSplits && !(s.hand.FromSplit && s.hand.IsPairOfAces()),
		surrender: first && t.rules.Surrender && len(t.round.seats) == 1 && !s.hand.FromSplit,
	}
}

func (l legality) allows(a strategy.Action) bool {
	switch a {
	case strategy.Hit:
		return l.hit
	case strategy.Stand:
		return l.stand
	case strategy.Double:
		return l.double
	case strategy.Split:
		return l.split
	case strategy.Surrender:
		return l.surrender
	}
	return false
}
