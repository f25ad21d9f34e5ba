package bridge

import (
	"encoding/json"
	"fmt"
)

// Player identifies one of the four seats at the table. Play proceeds
// clockwise in declaration order: North, East, South, West.
type Player int

const (
	North Player = iota
	East
	South
	West
)

// Players lists the four seats in clockwise order.
var Players = [4]Player{North, East, South, West}

// Next returns the seat to the left (clockwise).
func (p Player) Next() Player { return p.Skip(1) }

// Skip returns the seat n places clockwise from p.
func (p Player) Skip(n int) Player { return Player((int(p) + n) % 4) }

// Partner returns the seat across the table.
func (p Player) Partner() Player { return p.Skip(2) }

// IsOpponent reports whether other sits on the opposing pair.
func (p Player) IsOpponent(other Player) bool {
	return other == p.Skip(1) || other == p.Skip(3)
}

// Side returns the pair index: 0 for North/South, 1 for East/West.
func (p Player) Side() int { return int(p) % 2 }

func (p Player) String() string {
	switch p {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return "Unknown"
	}
}

// MarshalJSON implements json.Marshaler; seats serialize by name.
func (p Player) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler for Player.
func (p *Player) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "North":
		*p = North
	case "East":
		*p = East
	case "South":
		*p = South
	case "West":
		*p = West
	default:
		return fmt.Errorf("invalid player: %s", s)
	}
	return nil
}
