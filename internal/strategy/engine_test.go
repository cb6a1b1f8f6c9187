package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack-trainer/internal/deck"
	"github.com/lox/blackjack-trainer/internal/hand"
	"github.com/lox/blackjack-trainer/internal/rules"
)

func playerHand(s string) hand.Hand {
	return hand.New(deck.MustParseCards(s)...)
}

func upCard(s string) deck.Card {
	return deck.MustParseCards(s)[0]
}

func TestRecommendScenarios(t *testing.T) {
	s17 := New(rules.Default())

	h17cfg := rules.Default()
	h17cfg.DealerHitsSoft17 = true
	h17 := New(h17cfg)

	noDAScfg := rules.Default()
	noDAScfg.DoubleAfterSplit = false
	noDAS := New(noDAScfg)

	tests := []struct {
		name      string
		engine    *Engine
		hand      string
		up        string
		canDouble bool
		canSplit  bool
		canSurr   bool
		tc        float64
		want      Action
	}{
		{"hard 17 v A stands under S17", s17, "Ts7d", "Ah", true, false, true, 0, Stand},
		{"hard 17 v A surrenders under H17", h17, "Ts7d", "Ah", true, false, true, 0, Surrender},
		{"hard 17 v A stands under H17 without surrender", h17, "Ts7d", "Ah", true, false, false, 0, Stand},
		{"eights split v ten", s17, "8s8h", "Td", true, true, true, 0, Split},
		{"eights as hard 16 v ten stand at zero", s17, "8s8h", "Td", true, false, true, 0, Stand},
		{"ten six v ten stands at zero", s17, "Ts6h", "Td", true, false, true, 0, Stand},
		{"ten six v ten surrenders below zero", s17, "Ts6h", "Td", true, false, true, -1, Surrender},
		{"ten six v ten hits without surrender below zero", s17, "Ts6h", "Td", true, false, false, -1, Hit},
		{"eleven doubles v ten", s17, "6s5h", "Td", true, false, true, 0, Double},
		{"eleven hits v ace S17", s17, "6s5h", "As", true, false, true, 0, Hit},
		{"eleven doubles v ace H17", h17, "6s5h", "As", true, false, true, 0, Double},
		{"eleven hits when double unavailable", s17, "6s5h", "6d", false, false, true, 0, Hit},
		{"soft 18 doubles v 4", s17, "As7h", "4d", true, false, true, 0, Double},
		{"soft 18 stands v 4 when double unavailable", s17, "As7h", "4d", false, false, true, 0, Stand},
		{"soft 18 hits v 9", s17, "As7h", "9d", true, false, true, 0, Hit},
		{"soft 18 stands v 2 S17", s17, "As7h", "2d", true, false, true, 0, Stand},
		{"soft 18 doubles v 2 H17", h17, "As7h", "2d", true, false, true, 0, Double},
		{"soft 19 doubles v 6 H17", h17, "As8h", "6d", true, false, true, 0, Double},
		{"soft 19 stands v 6 H17 when double unavailable", h17, "As8h", "6d", false, false, true, 0, Stand},
		{"soft 19 stands v 6 S17", s17, "As8h", "6d", true, false, true, 0, Stand},
		{"fifteen v ace surrenders H17", h17, "Ts5h", "Ad", true, false, true, 0, Surrender},
		{"fifteen v ace hits H17 without surrender", h17, "Ts5h", "Ad", true, false, false, 0, Hit},
		{"fifteen v ace hits S17", s17, "Ts5h", "Ad", true, false, true, 0, Hit},
		{"aces always split", s17, "AsAh", "Ad", true, true, true, 0, Split},
		{"aces hit when split unavailable", s17, "AsAh", "6d", true, false, true, 0, Hit},
		{"tens stand v 6 at low count", s17, "TsKh", "6d", true, true, true, 0, Stand},
		{"tens split v 6 at +4", s17, "TsKh", "6d", true, true, true, 4, Split},
		{"tens split v 5 needs +5", s17, "TsKh", "5d", true, true, true, 4.9, Stand},
		{"fives double v 9", s17, "5s5h", "9d", true, true, true, 0, Double},
		{"nines stand v 7", s17, "9s9h", "7d", true, true, true, 0, Stand},
		{"nines split v 8", s17, "9s9h", "8d", true, true, true, 0, Split},
		{"twos split v 2 with DAS", s17, "2s2h", "2d", true, true, true, 0, Split},
		{"twos hit v 2 without DAS", noDAS, "2s2h", "2d", true, true, true, 0, Hit},
		{"fours split v 5 with DAS", s17, "4s4h", "5d", true, true, true, 0, Split},
		{"fours hit v 5 without DAS", noDAS, "4s4h", "5d", true, true, true, 0, Hit},
		{"twelve v 3 hits at +1", s17, "Ts2h", "3d", true, false, true, 1.5, Hit},
		{"twelve v 3 stands at +2", s17, "Ts2h", "3d", true, false, true, 2, Stand},
		{"twelve v 2 stands at +3", s17, "Ts2h", "2d", true, false, true, 3, Stand},
		{"thirteen v 2 hits at -2", s17, "Ts3h", "2d", true, false, true, -2, Hit},
		{"thirteen v 2 stands at -1", s17, "Ts3h", "2d", true, false, true, -1, Stand},
		{"sixes v 2 without DAS stand at +3", noDAS, "6s6d", "2c", true, true, true, 3, Stand},
		{"sixes v 2 without DAS hit at +2", noDAS, "6s6d", "2c", true, true, true, 2, Hit},
		{"sixes v 2 with DAS split at +3", s17, "6s6d", "2c", true, true, true, 3, Split},
		{"tens v 6 stand below the split index", s17, "TsKh", "6d", true, true, true, 3, Stand},
		{"fifteen v ten stands at +4", s17, "Ts5h", "Td", true, false, true, 4, Stand},
		{"multi card hard 16 v ten stands at -0.5", s17, "Ts2h4c", "Td", false, false, false, -0.5, Stand},
		{"soft 21 stands", s17, "As4h6c", "Td", false, false, false, 0, Stand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.engine.Recommend(playerHand(tt.hand), upCard(tt.up), tt.canDouble, tt.canSplit, tt.canSurr, tt.tc)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncatedIndexAppliesToDeviations(t *testing.T) {
	e := New(rules.Default())
	// -0.5 truncates to 0 so the 16 v 10 stand index applies
	assert.Equal(t, Stand, e.Recommend(playerHand("Ts6h"), upCard("Td"), true, false, false, -0.5))
	assert.Equal(t, Hit, e.Recommend(playerHand("Ts6h"), upCard("Td"), true, false, false, -1))
}

func TestWithoutDeviations(t *testing.T) {
	e := New(rules.Default(), WithDeviations())
	assert.Empty(t, e.Deviations())
	assert.Equal(t, Hit, e.Recommend(playerHand("Ts6h"), upCard("Td"), true, false, false, 5))
	assert.Equal(t, Stand, e.Recommend(playerHand("TsTh"), upCard("6d"), true, true, true, 10))
}

func TestExplainSource(t *testing.T) {
	e := New(rules.Default())

	rec := e.Explain(playerHand("Ts6h"), upCard("Td"), true, false, true, 0)
	assert.Equal(t, Stand, rec.Action)
	assert.Equal(t, SourceDeviation, rec.Source)
	require.NotNil(t, rec.Deviation)
	assert.Equal(t, 16, rec.Deviation.Total)

	assert.Equal(t, SourcePair, e.Explain(playerHand("8s8h"), upCard("Td"), true, true, true, 0).Source)
	assert.Equal(t, SourceSoft, e.Explain(playerHand("As6h"), upCard("Td"), true, false, true, 0).Source)
	assert.Equal(t, SourceHard, e.Explain(playerHand("9s7h"), upCard("7d"), true, false, true, 0).Source)
}

func TestUnsplitPairUsesTotalDeviations(t *testing.T) {
	cfg := rules.Default()
	cfg.DoubleAfterSplit = false
	e := New(cfg)

	rec := e.Explain(playerHand("6s6d"), upCard("2c"), true, true, true, 3)
	assert.Equal(t, Stand, rec.Action)
	assert.Equal(t, SourceDeviation, rec.Source)
	require.NotNil(t, rec.Deviation)
	assert.Equal(t, HardHand, rec.Deviation.Category)
	assert.Equal(t, 12, rec.Deviation.Total)

	// Same answer whether or not the split is on offer
	assert.Equal(t, rec.Action, e.Recommend(playerHand("6s6d"), upCard("2c"), true, false, true, 3))
	assert.Equal(t, rec.Action, e.Recommend(playerHand("Ts2d"), upCard("2c"), true, false, true, 3))

	rec = e.Explain(playerHand("6s6d"), upCard("2c"), true, true, true, 0)
	assert.Equal(t, Hit, rec.Action)
	assert.Equal(t, SourceHard, rec.Source)
}

func TestSurrenderDisabledByRules(t *testing.T) {
	cfg := rules.Default()
	cfg.Surrender = false
	e := New(cfg)
	assert.Equal(t, Hit, e.Recommend(playerHand("Ts6h"), upCard("Ad"), true, false, true, 0))
}

func TestInsurance(t *testing.T) {
	e := New(rules.Default())
	assert.False(t, e.Insurance(2.5))
	assert.True(t, e.Insurance(3))
	assert.True(t, e.Insurance(6))

	custom := New(rules.Default(), WithInsuranceIndex(2))
	assert.True(t, custom.Insurance(2))
	assert.Equal(t, 2, custom.InsuranceIndex())
}

func TestEveryTwoCardHandHasLegalRecommendation(t *testing.T) {
	for _, cfg := range []rules.Config{rules.Default(), func() rules.Config {
		c := rules.Default()
		c.DealerHitsSoft17 = true
		c.DoubleAfterSplit = false
		c.Surrender = false
		return c
	}()} {
		e := New(cfg)
		for r1 := deck.Ace; r1 <= deck.King; r1++ {
			for r2 := deck.Ace; r2 <= deck.King; r2++ {
				h := hand.New(deck.NewCard(r1, deck.Spades), deck.NewCard(r2, deck.Hearts))
				for up := deck.Ace; up <= deck.Ten; up++ {
					a := e.Recommend(h, deck.NewCard(up, deck.Clubs), false, false, false, 0)
					assert.NotEqual(t, Double, a, "%s v %s", h, up)
					assert.NotEqual(t, Split, a, "%s v %s", h, up)
					assert.NotEqual(t, Surrender, a, "%s v %s", h, up)
				}
			}
		}
	}
}

func TestParseAction(t *testing.T) {
	for in, want := range map[string]Action{"hit": Hit, "S": Stand, "double": Double, "p": Split, "Surrender": Surrender} {
		got, err := ParseAction(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseAction("fold")
	assert.Error(t, err)
}

func TestDeviationValidate(t *testing.T) {
	for _, d := range DefaultDeviations() {
		assert.NoError(t, d.Validate(), d.String())
	}
	assert.Error(t, Deviation{Category: HardHand, Total: 30, DealerUp: 10, Action: Stand}.Validate())
	assert.Error(t, Deviation{Category: PairHand, Total: 10, DealerUp: 11, Action: Split}.Validate())
	assert.Equal(t, "hard 16 v 10: stand at +0", DefaultDeviations()[0].String())
	assert.Equal(t, "hard 13 v 2: hit below -1", DefaultDeviations()[4].String())
}
