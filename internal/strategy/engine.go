package strategy

import (
	"github.com/lox/blackjack-trainer/internal/count"
	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/hand"
	"github.com/lox/blackjack-trainer/internal/rules"
)

// Source identifies where a recommendation came from
type Source string

const (
	SourceDeviation Source = "deviation"
	SourcePair      Source = "pair"
	SourceSoft      Source = "soft"
	SourceHard      Source = "hard"
)

// Recommendation is an action together with its origin
type Recommendation struct {
	Action    Action     `json:"action"`
	Source    Source     `json:"source"`
	Deviation *Deviation `json:"-"`
}

// Engine recommends plays for one rule set. It is immutable and safe for
// concurrent use.
type Engine struct {
	rules          rules.Config
	tables         tableSet
	deviations     []Deviation
	insuranceIndex int
}

// Option configures an Engine
type Option func(*Engine)

// WithDeviations replaces the default index plays. Pass none to play pure
// basic strategy.
func WithDeviations(devs ...Deviation) Option {
	return func(e *Engine) {
		e.deviations = append([]Deviation(nil), devs...)
	}
}

// WithInsuranceIndex sets the true count index at which insurance is taken
func WithInsuranceIndex(index int) Option {
	return func(e *Engine) {
		e.insuranceIndex = index
	}
}

// New builds an engine for the given rules
func New(cfg rules.Config, opts ...Option) *Engine {
	e := &Engine{
		rules:          cfg,
		tables:         selectTables(cfg.DealerHitsSoft17, cfg.DoubleAfterSplit),
		deviations:     DefaultDeviations(),
		insuranceIndex: DefaultInsuranceIndex,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the rule set the engine was built for
func (e *Engine) Rules() rules.Config { return e.rules }

// Deviations returns a copy of the active index plays
func (e *Engine) Deviations() []Deviation {
	return append([]Deviation(nil), e.deviations...)
}

// InsuranceIndex returns the insurance threshold
func (e *Engine) InsuranceIndex() int { return e.insuranceIndex }

// Recommend returns the best legal action for the hand against the dealer
// up-card at the given true count.
func (e *Engine) Recommend(h hand.Hand, up deck.Card, canDouble, canSplit, canSurrender bool, trueCount float64) Action {
	return e.Explain(h, up, canDouble, canSplit, canSurrender, trueCount).Action
}

// Explain is Recommend plus the source of the decision
func (e *Engine) Explain(h hand.Hand, up deck.Card, canDouble, canSplit, canSurrender bool, trueCount float64) Recommendation {
	canSurrender = canSurrender && e.rules.Surrender
	if h.IsBust() || h.Total() >= hand.Blackjack {
		return Recommendation{Action: Stand, Source: SourceHard}
	}

	cat, key := classify(h, canSplit)
	index := count.Index(trueCount)
	if rec, ok := e.deviation(cat, key, up, index, canDouble, canSplit, canSurrender); ok {
		return rec
	}

	if cat == PairHand {
		if c := e.tables.pairs.lookup(key, up, cellNone); c == cellSplit {
			return Recommendation{Action: Split, Source: SourcePair}
		}
		// An unsplit pair plays as its total, including that total's index plays
		cat, key = classify(h, false)
		if rec, ok := e.deviation(cat, key, up, index, canDouble, canSplit, canSurrender); ok {
			return rec
		}
	}

	if h.IsSoft() {
		c := e.tables.soft.lookup(h.SoftTotal(), up, cellStand)
		return Recommendation{Action: c.resolve(canDouble, canSurrender), Source: SourceSoft}
	}

	fallback := cellHit
	if h.HardTotal() > 21 {
		fallback = cellStand
	}
	c := e.tables.hard.lookup(h.HardTotal(), up, fallback)
	return Recommendation{Action: c.resolve(canDouble, canSurrender), Source: SourceHard}
}

// deviation returns the first index play for the hand that applies and is legal
func (e *Engine) deviation(cat Category, key int, up deck.Card, index int, canDouble, canSplit, canSurrender bool) (Recommendation, bool) {
	for i := range e.deviations {
		d := e.deviations[i]
		if !d.matches(cat, key, up) || !d.Applies(index) {
			continue
		}
		if !legal(d.Action, canDouble, canSplit, canSurrender) {
			continue
		}
		return Recommendation{Action: d.Action, Source: SourceDeviation, Deviation: &d}, true
	}
	return Recommendation{}, false
}

// Insurance reports whether insurance should be taken at this true count
func (e *Engine) Insurance(trueCount float64) bool {
	return count.Index(trueCount) >= e.insuranceIndex
}

// IsCorrect reports whether a taken action matches the recommendation
func IsCorrect(taken, recommended Action) bool {
	return taken == recommended
}

func legal(a Action, canDouble, canSplit, canSurrender bool) bool {
	switch a {
	case Double:
		return canDouble
	case Split:
		return canSplit
	case Surrender:
		return canSurrender
	}
	return true
}
