package game

import "fmt"

// Phase is the position of the table in the round cycle
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseInsurance
	PhasePlayerActions
	PhaseDealerPlay
	PhaseSettlement
)

func (p Phase) String() string {
	if p < PhaseIdle || p > PhaseSettlement {
		return fmt.Sprintf("phase(%d)", int(p))
	}
	return [...]string{"idle", "insurance", "player_actions", "dealer_play", "settlement"}[p]
}

// MarshalText encodes the phase name
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
