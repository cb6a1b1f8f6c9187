package strategy

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack-trainer/internal/deck"
)

// cell is one entry of a strategy table. Conditional cells carry their own
// fallback for when the preferred play is not available.
type cell uint8

const (
	cellNone               cell = iota // pair tables only: do not split
	cellHit                            // H
	cellStand                          // S
	cellDoubleElseHit                  // D
	cellDoubleElseStand                // Ds
	cellSplit                          // P
	cellSurrenderElseHit               // Rh
	cellSurrenderElseStand             // Rs
)

var cellCodes = map[string]cell{
	"-":  cellNone,
	"H":  cellHit,
	"S":  cellStand,
	"D":  cellDoubleElseHit,
	"Ds": cellDoubleElseStand,
	"P":  cellSplit,
	"Rh": cellSurrenderElseHit,
	"Rs": cellSurrenderElseStand,
}

// resolve turns a cell into an action given what is currently legal
func (c cell) resolve(canDouble, canSurrender bool) Action {
	switch c {
	case cellStand:
		return Stand
	case cellDoubleElseHit:
		if canDouble {
			return Double
		}
		return Hit
	case cellDoubleElseStand:
		if canDouble {
			return Double
		}
		return Stand
	case cellSplit:
		return Split
	case cellSurrenderElseHit:
		if canSurrender {
			return Surrender
		}
		return Hit
	case cellSurrenderElseStand:
		if canSurrender {
			return Surrender
		}
		return Stand
	default:
		return Hit
	}
}

// grid maps a row key (total or pair rank) to the ten dealer up-cards 2..9, T, A
type grid map[int][10]cell

// column maps a dealer up-card to its grid column
func column(up deck.Card) int {
	v := up.Value()
	if v == 1 {
		return 9
	}
	return v - 2
}

// mustGrid parses table rows, applying subst to variant-dependent codes first
func mustGrid(rows map[int]string, subst map[string]string) grid {
	g := make(grid, len(rows))
	for key, row := range rows {
		fields := strings.Fields(row)
		if len(fields) != 10 {
			panic(fmt.Sprintf("strategy row %d has %d columns", key, len(fields)))
		}
		var cells [10]cell
		for i, f := range fields {
			if r, ok := subst[f]; ok {
				f = r
			}
			c, ok := cellCodes[f]
			if !ok {
				panic(fmt.Sprintf("strategy row %d: unknown code %q", key, f))
			}
			cells[i] = c
		}
		g[key] = cells
	}
	return g
}

// Tables below are six-deck basic strategy. Columns are the dealer up-card.
//
//	2  3  4  5  6  7  8  9  T  A

var hardS17 = mustGrid(map[int]string{
	4:  "H  H  H  H  H  H  H  H  H  H",
	5:  "H  H  H  H  H  H  H  H  H  H",
	6:  "H  H  H  H  H  H  H  H  H  H",
	7:  "H  H  H  H  H  H  H  H  H  H",
	8:  "H  H  H  H  H  H  H  H  H  H",
	9:  "H  D  D  D  D  H  H  H  H  H",
	10: "D  D  D  D  D  D  D  D  H  H",
	11: "D  D  D  D  D  D  D  D  D  H",
	12: "H  H  S  S  S  H  H  H  H  H",
	13: "S  S  S  S  S  H  H  H  H  H",
	14: "S  S  S  S  S  H  H  H  H  H",
	15: "S  S  S  S  S  H  H  H  Rh H",
	16: "S  S  S  S  S  H  H  Rh Rh Rh",
	17: "S  S  S  S  S  S  S  S  S  S",
	18: "S  S  S  S  S  S  S  S  S  S",
	19: "S  S  S  S  S  S  S  S  S  S",
	20: "S  S  S  S  S  S  S  S  S  S",
	21: "S  S  S  S  S  S  S  S  S  S",
}, nil)

var hardH17 = mustGrid(map[int]string{
	4:  "H  H  H  H  H  H  H  H  H  H",
	5:  "H  H  H  H  H  H  H  H  H  H",
	6:  "H  H  H  H  H  H  H  H  H  H",
	7:  "H  H  H  H  H  H  H  H  H  H",
	8:  "H  H  H  H  H  H  H  H  H  H",
	9:  "H  D  D  D  D  H  H  H  H  H",
	10: "D  D  D  D  D  D  D  D  H  H",
	11: "D  D  D  D  D  D  D  D  D  D",
	12: "H  H  S  S  S  H  H  H  H  H",
	13: "S  S  S  S  S  H  H  H  H  H",
	14: "S  S  S  S  S  H  H  H  H  H",
	15: "S  S  S  S  S  H  H  H  Rh Rh",
	16: "S  S  S  S  S  H  H  Rh Rh Rh",
	17: "S  S  S  S  S  S  S  S  S  Rs",
	18: "S  S  S  S  S  S  S  S  S  S",
	19: "S  S  S  S  S  S  S  S  S  S",
	20: "S  S  S  S  S  S  S  S  S  S",
	21: "S  S  S  S  S  S  S  S  S  S",
}, nil)

var softS17 = mustGrid(map[int]string{
	12: "H  H  H  H  H  H  H  H  H  H",
	13: "H  H  H  D  D  H  H  H  H  H",
	14: "H  H  H  D  D  H  H  H  H  H",
	15: "H  H  D  D  D  H  H  H  H  H",
	16: "H  H  D  D  D  H  H  H  H  H",
	17: "H  D  D  D  D  H  H  H  H  H",
	18: "S  Ds Ds Ds Ds S  S  H  H  H",
	19: "S  S  S  S  S  S  S  S  S  S",
	20: "S  S  S  S  S  S  S  S  S  S",
	21: "S  S  S  S  S  S  S  S  S  S",
}, nil)

var softH17 = mustGrid(map[int]string{
	12: "H  H  H  H  H  H  H  H  H  H",
	13: "H  H  H  D  D  H  H  H  H  H",
	14: "H  H  H  D  D  H  H  H  H  H",
	15: "H  H  D  D  D  H  H  H  H  H",
	16: "H  H  D  D  D  H  H  H  H  H",
	17: "H  D  D  D  D  H  H  H  H  H",
	18: "Ds Ds Ds Ds Ds S  S  H  H  H",
	19: "S  S  S  S  Ds S  S  S  S  S",
	20: "S  S  S  S  S  S  S  S  S  S",
	21: "S  S  S  S  S  S  S  S  S  S",
}, nil)

// The pair table is keyed by rank value (1 = Aces, 10 = any ten-value pair).
// "-" means the pair is played by its hard or soft total instead. "Ph" splits
// only when doubling after a split is allowed.
var pairRows = map[int]string{
	1:  "P  P  P  P  P  P  P  P  P  P",
	2:  "Ph Ph P  P  P  P  -  -  -  -",
	3:  "Ph Ph P  P  P  P  -  -  -  -",
	4:  "-  -  -  Ph Ph -  -  -  -  -",
	5:  "-  -  -  -  -  -  -  -  -  -",
	6:  "Ph P  P  P  P  -  -  -  -  -",
	7:  "P  P  P  P  P  P  -  -  -  -",
	8:  "P  P  P  P  P  P  P  P  P  P",
	9:  "P  P  P  P  P  -  P  P  -  -",
	10: "-  -  -  -  -  -  -  -  -  -",
}

var (
	pairsDAS   = mustGrid(pairRows, map[string]string{"Ph": "P"})
	pairsNoDAS = mustGrid(pairRows, map[string]string{"Ph": "-"})
)

// tableSet is the hard/soft/pair tables for one rule variant
type tableSet struct {
	hard  grid
	soft  grid
	pairs grid
}

func selectTables(hitsSoft17, doubleAfterSplit bool) tableSet {
	ts := tableSet{hard: hardS17, soft: softS17, pairs: pairsNoDAS}
	if hitsSoft17 {
		ts.hard, ts.soft = hardH17, softH17
	}
	if doubleAfterSplit {
		ts.pairs = pairsDAS
	}
	return ts
}

func (g grid) lookup(key int, up deck.Card, fallback cell) cell {
	row, ok := g[key]
	if !ok {
		return fallback
	}
	return row[column(up)]
}
