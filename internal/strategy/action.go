// Package strategy recommends blackjack plays from precomputed basic strategy
// tables and Hi-Lo index deviations.
package strategy

import (
	"fmt"
	"strings"
)

// Action is a player decision
type Action int

const (
	Hit Action = iota
	Stand
	Double
	Split
	Surrender
)

func (a Action) String() string {
	if a < Hit || a > Surrender {
		return fmt.Sprintf("action(%d)", int(a))
	}
	return [...]string{"hit", "stand", "double", "split", "surrender"}[a]
}

// Valid reports whether a is a known action
func (a Action) Valid() bool {
	return a >= Hit && a <= Surrender
}

// MarshalText encodes the action by name
func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid action %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText decodes an action name
func (a *Action) UnmarshalText(b []byte) error {
	parsed, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAction accepts full names and the usual single-letter shorthands
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hit", "h":
		return Hit, nil
	case "stand", "s":
		return Stand, nil
	case "double", "d", "double down":
		return Double, nil
	case "split", "p", "sp":
		return Split, nil
	case "surrender", "r", "sr":
		return Surrender, nil
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Wagers reports whether the action puts more money on the table
func (a Action) Wagers() bool {
	return a == Double || a == Split
}
