// Package config loads trainer settings from an HCL file. Every block and
// attribute is optional; anything left out keeps its default.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"

	"github.com/lox/blackjack-trainer/internal/betting"
	"github.com/lox/blackjack-trainer/internal/rules"
	"github.com/lox/blackjack-trainer/internal/session"
	"github.com/lox/blackjack-trainer/internal/strategy"
)

// Bet sizing methods
const (
	MethodSpread = "spread"
	MethodKelly  = "kelly"
)

// Config is the resolved configuration
type Config struct {
	Rules          rules.Config
	Deviations     []strategy.Deviation
	InsuranceIndex int
	Method         string
	MaxSpread      int
	Spread         betting.Spread
	Kelly          betting.Kelly
	Bankroll       decimal.Decimal
	Risk           session.RiskProfile
	History        string
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Rules:          rules.Default(),
		Deviations:     strategy.DefaultDeviations(),
		InsuranceIndex: strategy.DefaultInsuranceIndex,
		Method:         MethodSpread,
		MaxSpread:      betting.DefaultMaxSpread,
		Spread:         betting.DefaultSpread(),
		Kelly:          session.Medium.Kelly(),
		Bankroll:       decimal.NewFromInt(1000),
		Risk:           session.Medium,
		History:        "blackjack-history.db",
	}
}

// StrategyOptions returns the engine options for the counting block
func (c *Config) StrategyOptions() []strategy.Option {
	return []strategy.Option{
		strategy.WithDeviations(c.Deviations...),
		strategy.WithInsuranceIndex(c.InsuranceIndex),
	}
}

// Validate checks the resolved values hang together
func (c *Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return err
	}
	for _, d := range c.Deviations {
		if err := d.Validate(); err != nil {
			return err
		}
	}
	switch c.Method {
	case MethodSpread:
		if err := c.Spread.Validate(); err != nil {
			return err
		}
	case MethodKelly:
		if c.Kelly.Multiplier <= 0 || c.Kelly.Multiplier > 1 {
			return fmt.Errorf("kelly multiplier must be in (0, 1], got %.2f", c.Kelly.Multiplier)
		}
	default:
		return fmt.Errorf("unknown bet sizing method %q", c.Method)
	}
	if c.MaxSpread < 1 {
		return fmt.Errorf("max spread must be at least 1, got %d", c.MaxSpread)
	}
	if !c.Bankroll.IsPositive() {
		return errors.New("bankroll must be positive")
	}
	if c.Bankroll.LessThan(c.Rules.MinBet) {
		return fmt.Errorf("bankroll %s is below the minimum bet %s", c.Bankroll, c.Rules.MinBet)
	}
	return nil
}

type fileConfig struct {
	Rules    *rulesBlock    `hcl:"rules,block"`
	Counting *countingBlock `hcl:"counting,block"`
	Betting  *bettingBlock  `hcl:"betting,block"`
	Session  *sessionBlock  `hcl:"session,block"`
}

type rulesBlock struct {
	Decks            *int     `hcl:"decks,optional"`
	DealerHitsSoft17 *bool    `hcl:"dealer_hits_soft_17,optional"`
	BlackjackPayout  *string  `hcl:"blackjack_payout,optional"`
	Surrender        *bool    `hcl:"surrender,optional"`
	DoubleAfterSplit *bool    `hcl:"double_after_split,optional"`
	Penetration      *float64 `hcl:"penetration,optional"`
	MaxSplits        *int     `hcl:"max_splits,optional"`
	MinBet           *float64 `hcl:"min_bet,optional"`
	MaxBet           *float64 `hcl:"max_bet,optional"`
}

type countingBlock struct {
	InsuranceIndex *int             `hcl:"insurance_index,optional"`
	Deviations     *bool            `hcl:"deviations,optional"`
	Overrides      []deviationBlock `hcl:"deviation,block"`
}

type deviationBlock struct {
	Category string `hcl:"category,label"`
	Total    int    `hcl:"total"`
	Dealer   string `hcl:"dealer"`
	Index    int    `hcl:"index"`
	Action   string `hcl:"action"`
	Below    *bool  `hcl:"below,optional"`
}

type bettingBlock struct {
	Method          *string     `hcl:"method,optional"`
	MaxSpread       *int        `hcl:"max_spread,optional"`
	KellyMultiplier *float64    `hcl:"kelly_multiplier,optional"`
	Variance        *float64    `hcl:"variance,optional"`
	Steps           []stepBlock `hcl:"step,block"`
}

type stepBlock struct {
	TrueCount int  `hcl:"true_count"`
	Units     int  `hcl:"units"`
	MaxUnits  *int `hcl:"max_units,optional"`
}

type sessionBlock struct {
	Bankroll *float64 `hcl:"bankroll,optional"`
	Risk     *string  `hcl:"risk,optional"`
	History  *string  `hcl:"history,optional"`
}

// Load reads the file at filename. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source and validates the result
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &raw)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := Default()
	if err := raw.apply(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return cfg, nil
}

func (f *fileConfig) apply(cfg *Config) error {
	if err := f.applyRules(cfg); err != nil {
		return err
	}
	// The risk profile comes before betting so an explicit kelly_multiplier wins
	if s := f.Session; s != nil {
		if s.Risk != nil {
			risk, err := session.ParseRiskProfile(*s.Risk)
			if err != nil {
				return err
			}
			cfg.Risk = risk
			cfg.Kelly = risk.Kelly()
		}
		if s.Bankroll != nil {
			cfg.Bankroll = decimal.NewFromFloat(*s.Bankroll)
		}
		if s.History != nil {
			cfg.History = *s.History
		}
	}
	if err := f.applyCounting(cfg); err != nil {
		return err
	}
	return f.applyBetting(cfg)
}

func (f *fileConfig) applyRules(cfg *Config) error {
	r := f.Rules
	if r == nil {
		return nil
	}
	set(&cfg.Rules.Decks, r.Decks)
	set(&cfg.Rules.DealerHitsSoft17, r.DealerHitsSoft17)
	set(&cfg.Rules.Surrender, r.Surrender)
	set(&cfg.Rules.DoubleAfterSplit, r.DoubleAfterSplit)
	set(&cfg.Rules.Penetration, r.Penetration)
	set(&cfg.Rules.MaxSplits, r.MaxSplits)
	if r.BlackjackPayout != nil {
		ratio, err := rules.ParseRatio(*r.BlackjackPayout)
		if err != nil {
			return fmt.Errorf("%w: %v", rules.ErrInvalidRuleConfig, err)
		}
		cfg.Rules.BlackjackPayout = ratio
	}
	if r.MinBet != nil {
		cfg.Rules.MinBet = decimal.NewFromFloat(*r.MinBet)
	}
	if r.MaxBet != nil {
		cfg.Rules.MaxBet = decimal.NewFromFloat(*r.MaxBet)
	}
	return nil
}

func (f *fileConfig) applyCounting(cfg *Config) error {
	c := f.Counting
	if c == nil {
		return nil
	}
	set(&cfg.InsuranceIndex, c.InsuranceIndex)
	if len(c.Overrides) > 0 {
		devs := make([]strategy.Deviation, 0, len(c.Overrides))
		for _, b := range c.Overrides {
			d, err := b.deviation()
			if err != nil {
				return err
			}
			devs = append(devs, d)
		}
		cfg.Deviations = devs
	}
	if c.Deviations != nil && !*c.Deviations {
		cfg.Deviations = nil
	}
	return nil
}

func (b deviationBlock) deviation() (strategy.Deviation, error) {
	cat, err := strategy.ParseCategory(b.Category)
	if err != nil {
		return strategy.Deviation{}, err
	}
	up, err := parseUpCard(b.Dealer)
	if err != nil {
		return strategy.Deviation{}, err
	}
	action, err := strategy.ParseAction(b.Action)
	if err != nil {
		return strategy.Deviation{}, err
	}
	d := strategy.Deviation{
		Category:  cat,
		Total:     b.Total,
		DealerUp:  up,
		Threshold: b.Index,
		Action:    action,
	}
	set(&d.Below, b.Below)
	return d, nil
}

func parseUpCard(s string) (int, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A", "ACE":
		return 1, nil
	case "T", "J", "Q", "K":
		return 10, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 1 || v > 11 {
		return 0, fmt.Errorf("invalid dealer up-card %q", s)
	}
	if v == 11 {
		v = 1
	}
	return v, nil
}

func (f *fileConfig) applyBetting(cfg *Config) error {
	b := f.Betting
	if b == nil {
		return nil
	}
	if b.Method != nil {
		cfg.Method = strings.ToLower(strings.TrimSpace(*b.Method))
	}
	set(&cfg.MaxSpread, b.MaxSpread)
	set(&cfg.Kelly.Multiplier, b.KellyMultiplier)
	set(&cfg.Kelly.Variance, b.Variance)
	if len(b.Steps) > 0 {
		steps := make([]betting.Step, 0, len(b.Steps))
		for _, s := range b.Steps {
			step := betting.Step{TrueCount: s.TrueCount, Units: s.Units, MaxUnits: s.Units}
			set(&step.MaxUnits, s.MaxUnits)
			steps = append(steps, step)
		}
		cfg.Spread = betting.Spread{Steps: steps}
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
