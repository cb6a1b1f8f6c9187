// Package rules holds the casino rule set a session is played under.
package rules

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/lox/blackjack-trainer/internal/deck"
)

// ErrInvalidRuleConfig is returned for contradictory or out-of-range rules.
// Rules are validated once at session start and never change mid-round.
var ErrInvalidRuleConfig = errors.New("rules: invalid rule config")

// Ratio is a payout ratio such as 3:2
type Ratio struct {
	Num int
	Den int
}

var (
	// ThreeToTwo is the standard blackjack payout
	ThreeToTwo = Ratio{Num: 3, Den: 2}

	// SixToFive is the short-pay blackjack payout
	SixToFive = Ratio{Num: 6, Den: 5}
)

// ParseRatio parses "3:2" or "6/5"
func ParseRatio(s string) (Ratio, error) {
	sep := ":"
	if strings.Contains(s, "/") {
		sep = "/"
	}
	parts := strings.Split(strings.TrimSpace(s), sep)
	if len(parts) != 2 {
		return Ratio{}, fmt.Errorf("invalid ratio %q", s)
	}
	num, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Ratio{}, fmt.Errorf("invalid ratio %q: %w", s, err)
	}
	den, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Ratio{}, fmt.Errorf("invalid ratio %q: %w", s, err)
	}
	return Ratio{Num: num, Den: den}, nil
}

// Decimal returns the ratio as a multiplier, e.g. 1.5 for 3:2
func (r Ratio) Decimal() decimal.Decimal {
	if r.Den == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(r.Num)).Div(decimal.NewFromInt(int64(r.Den)))
}

// Float64 returns the ratio as a float multiplier
func (r Ratio) Float64() float64 {
	f, _ := r.Decimal().Float64()
	return f
}

func (r Ratio) String() string {
	return fmt.Sprintf("%d:%d", r.Num, r.Den)
}

// MarshalText encodes the ratio as "3:2"
func (r Ratio) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText accepts anything ParseRatio does
func (r *Ratio) UnmarshalText(b []byte) error {
	parsed, err := ParseRatio(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Config is the immutable rule set for one session
type Config struct {
	Decks            int             `json:"decks"`
	DealerHitsSoft17 bool            `json:"dealer_hits_soft_17"`
	BlackjackPayout  Ratio           `json:"blackjack_payout"`
	Surrender        bool            `json:"surrender"` // late surrender only
	DoubleAfterSplit bool            `json:"double_after_split"`
	Penetration      float64         `json:"penetration"`
	MaxSplits        int             `json:"max_splits"` // 3 allows up to four hands
	MinBet           decimal.Decimal `json:"min_bet"`
	MaxBet           decimal.Decimal `json:"max_bet"`
}

// Default returns a six-deck S17, 3:2, DAS, late-surrender game
func Default() Config {
	return Config{
		Decks:            deck.DefaultDecks,
		DealerHitsSoft17: false,
		BlackjackPayout:  ThreeToTwo,
		Surrender:        true,
		DoubleAfterSplit: true,
		Penetration:      deck.DefaultPenetration,
		MaxSplits:        3,
		MinBet:           decimal.NewFromInt(10),
		MaxBet:           decimal.NewFromInt(500),
	}
}

// Validate rejects rule sets that cannot be dealt
func (c Config) Validate() error {
	if c.Decks < 1 || c.Decks > 8 {
		return fmt.Errorf("%w: decks must be between 1 and 8, got %d", ErrInvalidRuleConfig, c.Decks)
	}
	if c.Penetration <= 0 || c.Penetration >= 1 {
		return fmt.Errorf("%w: penetration must be in (0, 1), got %.3f", ErrInvalidRuleConfig, c.Penetration)
	}
	if c.BlackjackPayout.Num <= 0 || c.BlackjackPayout.Den <= 0 {
		return fmt.Errorf("%w: blackjack payout %s must be positive", ErrInvalidRuleConfig, c.BlackjackPayout)
	}
	if c.MaxSplits < 0 {
		return fmt.Errorf("%w: max splits cannot be negative, got %d", ErrInvalidRuleConfig, c.MaxSplits)
	}
	if !c.MinBet.IsPositive() {
		return fmt.Errorf("%w: minimum bet must be positive, got %s", ErrInvalidRuleConfig, c.MinBet)
	}
	if c.MaxBet.LessThan(c.MinBet) {
		return fmt.Errorf("%w: maximum bet %s below minimum %s", ErrInvalidRuleConfig, c.MaxBet, c.MinBet)
	}
	return nil
}

// Variant names the strategy table family the rules select, e.g. "S17 DAS"
func (c Config) Variant() string {
	dealer := "S17"
	if c.DealerHitsSoft17 {
		dealer = "H17"
	}
	das := "noDAS"
	if c.DoubleAfterSplit {
		das = "DAS"
	}
	return dealer + " " + das
}

func (c Config) String() string {
	surrender := "no surrender"
	if c.Surrender {
		surrender = "late surrender"
	}
	return fmt.Sprintf("%d decks, %s, blackjack pays %s, %s, %.0f%% penetration, max %d splits",
		c.Decks, c.Variant(), c.BlackjackPayout, surrender, c.Penetration*100, c.MaxSplits)
}
