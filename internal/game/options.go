package game

import (
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack-trainer/internal/count"
	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/strategy"
)

// Option configures a Table during creation
type Option func(*tableConfig)

type tableConfig struct {
	shoe        *deck.Shoe
	engine      *strategy.Engine
	granularity float64
	wallet      Wallet
	sinks       []ResultSink
	logger      *log.Logger
}

// WithShoe uses a prepared shoe instead of shuffling a new one.
// Typically a stacked shoe in tests.
func WithShoe(shoe *deck.Shoe) Option {
	return func(c *tableConfig) {
		c.shoe = shoe
	}
}

// WithStrategy sets the engine used for recommendations and decision
// grading. Default is strategy.New with the table rules.
func WithStrategy(engine *strategy.Engine) Option {
	return func(c *tableConfig) {
		c.engine = engine
	}
}

// WithGranularity sets the decks-remaining estimation step.
// Default is half a deck.
func WithGranularity(g float64) Option {
	return func(c *tableConfig) {
		c.granularity = g
	}
}

// WithWallet checks every wager against the wallet balance
func WithWallet(w Wallet) Option {
	return func(c *tableConfig) {
		c.wallet = w
	}
}

// WithResultSink registers a receiver for settled rounds. May be repeated.
func WithResultSink(s ResultSink) Option {
	return func(c *tableConfig) {
		c.sinks = append(c.sinks, s)
	}
}

// WithLogger sets the logger. Default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(c *tableConfig) {
		c.logger = logger
	}
}

func defaultConfig() *tableConfig {
	return &tableConfig{granularity: count.DefaultGranularity}
}
